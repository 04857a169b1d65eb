package query

import "sort"

// Iterator is the interface the retrieval algorithms consult; *TermIterator
// satisfies it, and tests use small fakes to exercise the algorithms in
// isolation from chunk decoding (spec §4.11).
type Iterator interface {
	MaxScore() float64
	PostingCount() int
	CurrentDocID() uint32
	CurrentDocFrequency() uint32
	CurrentDocScore(n int, docLen, avgLen float64) float64
	MoveBlockMaxIterator(d uint32)
	BlockMaxScore() float64
	BlockMaxLastDocID() uint32
	Next() bool
	Advance(d uint32) bool
	IsComplete() bool
}

// DocLen resolves a document's length for BM25 TF, given its doc_id.
type DocLen func(docID uint32) float64

// WAND is the disjunctive top-k algorithm of spec §4.11.
func WAND(its []Iterator, k, n int, docLen DocLen, avgLen float64) []ScoredDoc {
	h := newTopKHeap(k)
	if len(its) == 0 {
		return h.Sorted()
	}
	for {
		sort.Slice(its, func(i, j int) bool { return its[i].CurrentDocID() < its[j].CurrentDocID() })
		if its[0].IsComplete() {
			break
		}
		theta := h.Threshold()
		pivot := -1
		cum := 0.0
		for i, it := range its {
			cum += it.MaxScore()
			if cum > theta {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			break
		}
		pivotDoc := its[pivot].CurrentDocID()
		if pivotDoc == infDocID {
			break
		}
		if its[0].CurrentDocID() == pivotDoc {
			j := 0
			score := 0.0
			for j < len(its) && its[j].CurrentDocID() == pivotDoc {
				score += its[j].CurrentDocScore(n, docLen(pivotDoc), avgLen)
				j++
			}
			h.push(ScoredDoc{DocID: pivotDoc, Score: score})
			for i := 0; i < j; i++ {
				its[i].Next()
			}
		} else {
			its[0].Advance(pivotDoc)
		}
	}
	return h.Sorted()
}

// BlockMaxWAND adds per-chunk block-max bounding of the pivot
// candidate on top of WAND's skeleton (spec §4.11).
func BlockMaxWAND(its []Iterator, k, n int, docLen DocLen, avgLen float64) []ScoredDoc {
	h := newTopKHeap(k)
	if len(its) == 0 {
		return h.Sorted()
	}
	for {
		sort.Slice(its, func(i, j int) bool { return its[i].CurrentDocID() < its[j].CurrentDocID() })
		if its[0].IsComplete() {
			break
		}
		theta := h.Threshold()
		pivot := -1
		cum := 0.0
		for i, it := range its {
			cum += it.MaxScore()
			if cum > theta {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			break
		}
		pivotDoc := its[pivot].CurrentDocID()
		if pivotDoc == infDocID {
			break
		}
		if its[0].CurrentDocID() != pivotDoc {
			its[0].Advance(pivotDoc)
			continue
		}

		j := 0
		bound := 0.0
		for j < len(its) && its[j].CurrentDocID() == pivotDoc {
			its[j].MoveBlockMaxIterator(pivotDoc)
			bound += its[j].BlockMaxScore()
			j++
		}
		if bound <= theta {
			minNext := uint32(infDocID)
			for i := 0; i < j; i++ {
				if nd := its[i].BlockMaxLastDocID() + 1; nd < minNext {
					minNext = nd
				}
			}
			if j < len(its) {
				if nd := its[j].CurrentDocID(); nd < minNext {
					minNext = nd
				}
			}
			for i := 0; i < j; i++ {
				its[i].Advance(minNext)
			}
			continue
		}

		score := 0.0
		for i := 0; i < j; i++ {
			score += its[i].CurrentDocScore(n, docLen(pivotDoc), avgLen)
		}
		h.push(ScoredDoc{DocID: pivotDoc, Score: score})
		for i := 0; i < j; i++ {
			its[i].Next()
		}
	}
	return h.Sorted()
}

// MaxScore is the disjunctive top-k algorithm that partitions query
// terms into essential/non-essential sets by a max_score prefix bound
// (spec §4.11).
func MaxScore(its []Iterator, k, n int, docLen DocLen, avgLen float64) []ScoredDoc {
	h := newTopKHeap(k)
	if len(its) == 0 {
		return h.Sorted()
	}
	sort.Slice(its, func(i, j int) bool { return its[i].MaxScore() < its[j].MaxScore() })
	ub := make([]float64, len(its))
	sum := 0.0
	for i, it := range its {
		sum += it.MaxScore()
		ub[i] = sum
	}

	for {
		allComplete := true
		for _, it := range its {
			if !it.IsComplete() {
				allComplete = false
				break
			}
		}
		if allComplete {
			break
		}

		theta := h.Threshold()
		pivot := 0
		for pivot < len(its) && ub[pivot] <= theta {
			pivot++
		}

		d := uint32(infDocID)
		for i := pivot; i < len(its); i++ {
			if cd := its[i].CurrentDocID(); cd < d {
				d = cd
			}
		}
		if d == infDocID {
			break
		}

		score := 0.0
		for i := pivot; i < len(its); i++ {
			if its[i].CurrentDocID() == d {
				score += its[i].CurrentDocScore(n, docLen(d), avgLen)
				its[i].Next()
			}
		}
		for i := 0; i < pivot; i++ {
			if score+ub[i] <= theta {
				continue
			}
			its[i].Advance(d)
			if its[i].CurrentDocID() == d {
				score += its[i].CurrentDocScore(n, docLen(d), avgLen)
			}
		}
		h.push(ScoredDoc{DocID: d, Score: score})
	}
	return h.Sorted()
}

// BlockMaxMaxScore adds per-chunk block-max bounding to MaxScore's
// non-essential lookups (spec §4.11).
func BlockMaxMaxScore(its []Iterator, k, n int, docLen DocLen, avgLen float64) []ScoredDoc {
	h := newTopKHeap(k)
	if len(its) == 0 {
		return h.Sorted()
	}
	sort.Slice(its, func(i, j int) bool { return its[i].MaxScore() < its[j].MaxScore() })
	ub := make([]float64, len(its))
	sum := 0.0
	for i, it := range its {
		sum += it.MaxScore()
		ub[i] = sum
	}

	for {
		allComplete := true
		for _, it := range its {
			if !it.IsComplete() {
				allComplete = false
				break
			}
		}
		if allComplete {
			break
		}

		theta := h.Threshold()
		pivot := 0
		for pivot < len(its) && ub[pivot] <= theta {
			pivot++
		}

		d := uint32(infDocID)
		for i := pivot; i < len(its); i++ {
			if cd := its[i].CurrentDocID(); cd < d {
				d = cd
			}
		}
		if d == infDocID {
			break
		}

		score := 0.0
		for i := pivot; i < len(its); i++ {
			if its[i].CurrentDocID() == d {
				score += its[i].CurrentDocScore(n, docLen(d), avgLen)
				its[i].Next()
			}
		}
		for i := 0; i < pivot; i++ {
			if score+ub[i] <= theta {
				continue
			}
			its[i].MoveBlockMaxIterator(d)
			if score+its[i].BlockMaxScore() <= theta {
				continue
			}
			its[i].Advance(d)
			if its[i].CurrentDocID() == d {
				score += its[i].CurrentDocScore(n, docLen(d), avgLen)
			}
		}
		h.push(ScoredDoc{DocID: d, Score: score})
	}
	return h.Sorted()
}

// ConjunctiveAND is the boolean-AND retrieval algorithm: it streams
// candidates from the cheapest (fewest-postings) iterator and keeps
// only doc_ids every other iterator also has (spec §4.11).
func ConjunctiveAND(its []Iterator, k, n int, docLen DocLen, avgLen float64) []ScoredDoc {
	h := newTopKHeap(k)
	if len(its) == 0 {
		return h.Sorted()
	}
	sort.Slice(its, func(i, j int) bool { return its[i].PostingCount() < its[j].PostingCount() })

	for !its[0].IsComplete() {
		d := its[0].CurrentDocID()
		matched := true
		for i := 1; i < len(its); i++ {
			its[i].Advance(d)
			if its[i].CurrentDocID() != d {
				matched = false
				break
			}
		}
		if matched {
			score := 0.0
			for _, it := range its {
				score += it.CurrentDocScore(n, docLen(d), avgLen)
			}
			h.push(ScoredDoc{DocID: d, Score: score})
			for _, it := range its {
				it.Next()
			}
		} else {
			its[0].Next()
		}
	}
	return h.Sorted()
}

// ConjunctiveANDHolistic is the "holistic hop" variant: instead of
// re-trying candidates one at a time, it hops the lagging iterator
// straight to whichever iterator overshot, using that overshoot as
// the next candidate (spec §4.11).
func ConjunctiveANDHolistic(its []Iterator, k, n int, docLen DocLen, avgLen float64) []ScoredDoc {
	h := newTopKHeap(k)
	if len(its) == 0 {
		return h.Sorted()
	}
	sort.Slice(its, func(i, j int) bool { return its[i].PostingCount() < its[j].PostingCount() })

	for !its[0].IsComplete() {
		d := its[0].CurrentDocID()
		matched := true
		overshoot := d
		for i := 1; i < len(its); i++ {
			its[i].Advance(d)
			cd := its[i].CurrentDocID()
			if cd != d {
				matched = false
			}
			if cd > overshoot {
				overshoot = cd
			}
		}
		if matched {
			score := 0.0
			for _, it := range its {
				score += it.CurrentDocScore(n, docLen(d), avgLen)
			}
			h.push(ScoredDoc{DocID: d, Score: score})
			for _, it := range its {
				it.Next()
			}
		} else {
			its[0].Advance(overshoot)
		}
	}
	return h.Sorted()
}
