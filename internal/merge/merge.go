// Package merge implements the final k-way merge over SPIMI run files:
// it assigns term_ids, scores every posting with BM25, partitions
// postings into chunks, packs chunks into blocks, and builds the term
// directory that the query processor later consults (spec §4.6).
package merge

import (
	"io"
	"math"
	"sort"

	"github.com/nyxsearch/engine/internal/block"
	"github.com/nyxsearch/engine/internal/chunk"
	"github.com/nyxsearch/engine/internal/codec"
	"github.com/nyxsearch/engine/internal/posting"
	"github.com/nyxsearch/engine/internal/scoring"
	"github.com/nyxsearch/engine/internal/spimi"
	"github.com/nyxsearch/engine/internal/termdir"
)

// DocLengths supplies per-document length and the corpus document
// count, two quantities the merge writer needs to score postings but
// does not itself own (docstore.Store satisfies this). The corpus
// average length is passed to Merge separately.
type DocLengths interface {
	Length(docID uint32) uint32
	DocCount() int
}

// Config tunes the merge writer's output format.
type Config struct {
	Codec         codec.Kind
	BlockCapacity int // 0 means block.DefaultCapacity
	Params        scoring.Params
	WithPositions bool
}

// Merge performs the k-way merge described in spec §4.6 over the
// given SPIMI run files, writing B-byte blocks to out (in block_id
// order, 0-based) and returning the populated term directory. avgLen
// is the corpus-wide average document length used for BM25 TF.
func Merge(runPaths []string, lengths DocLengths, avgLen float64, out io.Writer, cfg Config) (*termdir.Directory, error) {
	capacity := cfg.BlockCapacity
	if capacity <= 0 {
		capacity = block.DefaultCapacity
	}
	n := lengths.DocCount()

	iterators := make([]*spimi.Iterator, len(runPaths))
	defer func() {
		for _, it := range iterators {
			if it != nil {
				it.Close()
			}
		}
	}()

	var h termHeap
	for i, path := range runPaths {
		it, err := spimi.OpenIterator(path)
		if err != nil {
			return nil, err
		}
		iterators[i] = it
		if it.Next() {
			h.push(it)
		} else if err := it.Err(); err != nil {
			return nil, err
		}
	}

	dir := termdir.New()
	dir.SetDocCount(n)

	blockID := 0
	curBlock := block.New(blockID, capacity)
	blocksWritten := 0
	curBlockHasContent := false

	flush := func() error {
		if _, err := out.Write(curBlock.Encode()); err != nil {
			return err
		}
		blocksWritten++
		blockID++
		curBlock = block.New(blockID, capacity)
		curBlockHasContent = false
		return nil
	}

	for !h.empty() {
		minTerm := h.ch[0].Term()

		merged, err := collectPostings(&h, minTerm)
		if err != nil {
			return nil, err
		}

		ft := len(merged)
		scores := make([]float64, ft)
		maxScore := math.Inf(-1)
		for i, p := range merged {
			docLen := float64(lengths.Length(p.DocID))
			s := scoring.Score(cfg.Params, n, ft, int(p.Freq), docLen, avgLen)
			scores[i] = s
			if s > maxScore {
				maxScore = s
			}
		}
		if ft == 0 {
			maxScore = 0
		}

		termID := uint32(dir.TermCount() + 1)

		var blockIDs []uint32
		var chunkBlockMax []termdir.ChunkBlockMax
		needsAddTerm := true

		for start := 0; start < len(merged); start += chunk.MaxPostings {
			end := start + chunk.MaxPostings
			if end > len(merged) {
				end = len(merged)
			}
			group := merged[start:end]
			groupScores := scores[start:end]

			c := chunk.New(termID, cfg.Codec)
			for _, p := range group {
				var positions []uint32
				if cfg.WithPositions {
					positions = p.Positions
				}
				if err := c.AddDoc(p.DocID, p.Freq, positions); err != nil {
					return nil, err
				}
			}
			encoded := c.Encode()

			chunkMax := math.Inf(-1)
			for _, s := range groupScores {
				if s > chunkMax {
					chunkMax = s
				}
			}
			if len(groupScores) == 0 {
				chunkMax = 0
			}

			var spaceLeft int
			if needsAddTerm {
				spaceLeft = curBlock.SpaceLeft()
			} else {
				spaceLeft = curBlock.SpaceLeftForExistingTerm()
			}
			if len(encoded) > spaceLeft {
				if err := flush(); err != nil {
					return nil, err
				}
				needsAddTerm = true
			}
			if needsAddTerm {
				curBlock.AddTerm(termID)
				blockIDs = append(blockIDs, uint32(curBlock.ID))
				needsAddTerm = false
			}
			curBlock.AddChunkBytes(encoded)
			curBlockHasContent = true

			chunkBlockMax = append(chunkBlockMax, termdir.ChunkBlockMax{
				LastDocID: c.MaxDocID(),
				MaxScore:  float32(chunkMax),
			})
		}

		dir.AddTerm(minTerm, uint32(ft), float32(maxScore), blockIDs, chunkBlockMax)
	}

	if curBlockHasContent || blocksWritten == 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	dir.SetBlockCount(blocksWritten)

	return dir, nil
}

// termHeap is a binary min-heap of run iterators ordered by current
// term, in the spirit of the teacher's postHeap (index/write.go):
// each run contributes its current term to the heap; popping all
// iterators tied for the minimum term drains one term's worth of
// postings across every run that has it.
type termHeap struct {
	ch []*spimi.Iterator
}

func (h *termHeap) empty() bool { return len(h.ch) == 0 }

func (h *termHeap) push(it *spimi.Iterator) {
	h.ch = append(h.ch, it)
	h.siftUp(len(h.ch) - 1)
}

// pop removes and returns the iterator currently at the heap's root.
func (h *termHeap) pop() *spimi.Iterator {
	top := h.ch[0]
	last := len(h.ch) - 1
	h.ch[0] = h.ch[last]
	h.ch = h.ch[:last]
	if len(h.ch) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *termHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.ch[parent].Term() <= h.ch[i].Term() {
			break
		}
		h.ch[parent], h.ch[i] = h.ch[i], h.ch[parent]
		i = parent
	}
}

func (h *termHeap) siftDown(i int) {
	n := len(h.ch)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.ch[left].Term() < h.ch[smallest].Term() {
			smallest = left
		}
		if right < n && h.ch[right].Term() < h.ch[smallest].Term() {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.ch[smallest], h.ch[i] = h.ch[i], h.ch[smallest]
		i = smallest
	}
}

// collectPostings pops every iterator currently tied for term,
// gathers their postings, re-advances and re-pushes each one that
// still has terms left, and returns the union sorted by doc_id. Runs
// emit disjoint (term, doc_id) pairs by construction (spec §4.6 step
// 5), so a straight collect-then-sort suffices.
func collectPostings(h *termHeap, term string) (posting.List, error) {
	var merged posting.List
	for !h.empty() && h.ch[0].Term() == term {
		it := h.pop()
		merged = append(merged, it.Postings()...)
		if it.Next() {
			h.push(it)
		} else if err := it.Err(); err != nil {
			return nil, err
		}
	}
	sort.Slice(merged, func(a, b int) bool { return merged[a].DocID < merged[b].DocID })
	return merged, nil
}
