package query

import (
	"math"

	"github.com/nyxsearch/engine/internal/chunk"
	"github.com/nyxsearch/engine/internal/scoring"
	"github.com/nyxsearch/engine/internal/termdir"
)

// infDocID models +infinity for a completed iterator (spec §4.10), so
// sorting by current doc_id naturally places exhausted terms last.
const infDocID = math.MaxUint32

// TermIterator wraps one query term's postings and exposes the
// ranking facade the retrieval algorithms consult (spec §4.10).
type TermIterator struct {
	termID   uint32
	ft       uint32
	maxScore float64
	params   scoring.Params

	chunks   *ChunkIterator
	blockMax *BlockMaxIterator
}

// NewTermIterator builds a TermIterator from a term's already-decoded
// chunk sequence and chunk-block-max array.
func NewTermIterator(termID, ft uint32, maxScore float32, chunks []*chunk.Decoded, cbm []termdir.ChunkBlockMax, params scoring.Params) *TermIterator {
	return &TermIterator{
		termID:   termID,
		ft:       ft,
		maxScore: float64(maxScore),
		params:   params,
		chunks:   NewChunkIterator(chunks),
		blockMax: NewBlockMaxIterator(cbm),
	}
}

// TermID returns the term's term_id.
func (t *TermIterator) TermID() uint32 { return t.termID }

// PostingCount returns f_t, the term's corpus-wide document frequency
// — used by the conjunctive algorithm to order iterators cheapest
// first (spec §4.11).
func (t *TermIterator) PostingCount() int { return int(t.ft) }

// MaxScore returns the term's global max BM25 score.
func (t *TermIterator) MaxScore() float64 { return t.maxScore }

// IsComplete reports whether every posting has been consumed.
func (t *TermIterator) IsComplete() bool { return t.chunks.Done() }

// CurrentDocID returns the current posting's doc_id, or infDocID if
// the iterator is complete.
func (t *TermIterator) CurrentDocID() uint32 {
	if t.IsComplete() {
		return infDocID
	}
	return t.chunks.DocID()
}

// CurrentDocFrequency returns the current posting's in-document
// frequency, or 0 if complete.
func (t *TermIterator) CurrentDocFrequency() uint32 {
	if t.IsComplete() {
		return 0
	}
	return t.chunks.Frequency()
}

// CurrentDocScore computes BM25 on demand for the current posting
// (spec §4.13), given the corpus size n and the current document's
// length relative to the corpus average.
func (t *TermIterator) CurrentDocScore(n int, docLen, avgLen float64) float64 {
	if t.IsComplete() {
		return 0
	}
	return scoring.Score(t.params, n, int(t.ft), int(t.CurrentDocFrequency()), docLen, avgLen)
}

// MoveBlockMaxIterator advances the block-max iterator to the first
// chunk whose last_doc_id >= d.
func (t *TermIterator) MoveBlockMaxIterator(d uint32) { t.blockMax.Advance(d) }

// BlockMaxScore returns the current chunk's max BM25 bound.
func (t *TermIterator) BlockMaxScore() float64 { return t.blockMax.Score() }

// BlockMaxLastDocID returns the current chunk's last doc_id.
func (t *TermIterator) BlockMaxLastDocID() uint32 { return t.blockMax.Last() }

// Next advances to the next posting. Returns false once exhausted.
func (t *TermIterator) Next() bool { return t.chunks.Next() }

// Advance moves to the first posting with doc_id >= d, also moving
// the block-max iterator to stay roughly in step. Returns false once
// exhausted.
func (t *TermIterator) Advance(d uint32) bool {
	t.blockMax.Advance(d)
	return t.chunks.Advance(d)
}
