package query

import (
	"container/heap"
	"sort"
)

// ScoredDoc is one (doc_id, score) result.
type ScoredDoc struct {
	DocID uint32
	Score float64
}

// topKHeap is a min-heap of size at most k over (score, doc_id),
// giving the running threshold theta the algorithms compare
// candidates against (spec §4.11 "Common invariants"). The root is
// always the current worst-of-the-best entry.
type topKHeap struct {
	items []ScoredDoc
	k     int
}

func newTopKHeap(k int) *topKHeap {
	return &topKHeap{k: k}
}

func (h *topKHeap) Len() int { return len(h.items) }

// Less orders by score ascending; ties prefer evicting the larger
// doc_id first, so lower doc_ids survive at the threshold (spec's
// "ties break by doc_id ascending" output guarantee).
func (h *topKHeap) Less(i, j int) bool {
	if h.items[i].Score != h.items[j].Score {
		return h.items[i].Score < h.items[j].Score
	}
	return h.items[i].DocID > h.items[j].DocID
}

func (h *topKHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *topKHeap) Push(x any) { h.items = append(h.items, x.(ScoredDoc)) }

func (h *topKHeap) Pop() any {
	n := len(h.items)
	x := h.items[n-1]
	h.items = h.items[:n-1]
	return x
}

// Threshold returns the current theta: 0 while the heap has fewer
// than k entries, otherwise the root's score.
func (h *topKHeap) Threshold() float64 {
	if len(h.items) < h.k {
		return 0
	}
	return h.items[0].Score
}

// push inserts doc if the heap has room, or if doc strictly improves
// on the current worst kept entry (spec: "push ... when strictly
// better").
func (h *topKHeap) push(doc ScoredDoc) {
	if len(h.items) < h.k {
		heap.Push(h, doc)
		return
	}
	if doc.Score > h.items[0].Score {
		heap.Pop(h)
		heap.Push(h, doc)
	}
}

// Sorted drains the heap into the final output order: score
// descending, doc_id ascending (spec §5 ordering guarantees).
func (h *topKHeap) Sorted() []ScoredDoc {
	out := make([]ScoredDoc, len(h.items))
	copy(out, h.items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}
