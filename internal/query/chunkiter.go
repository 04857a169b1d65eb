// Package query implements the read-side of the engine: per-term
// chunk and block-max iterators, the ranking facade that wraps them,
// the five retrieval algorithms, and the query processor that wires
// tokenization, the term directory, and the block cache together
// (spec §4.8-§4.12).
package query

import "github.com/nyxsearch/engine/internal/chunk"

// ChunkIterator walks a term's ordered chunk sequence posting by
// posting (spec §4.8). It does no decoding itself: every chunk it is
// given has already been decoded in full by the caller.
type ChunkIterator struct {
	chunks []*chunk.Decoded
	ci     int // current chunk index
	pi     int // current posting index within chunks[ci]
}

// NewChunkIterator wraps an already-decoded, doc-id-ascending chunk
// sequence for one term and positions at the first posting.
func NewChunkIterator(chunks []*chunk.Decoded) *ChunkIterator {
	it := &ChunkIterator{chunks: chunks}
	it.skipEmptyChunks()
	return it
}

// skipEmptyChunks advances ci past any zero-posting chunks so pi
// always indexes a valid posting unless the iterator is exhausted.
func (it *ChunkIterator) skipEmptyChunks() {
	for it.ci < len(it.chunks) && len(it.chunks[it.ci].DocIDs) == 0 {
		it.ci++
	}
}

// Done reports whether every posting has been consumed.
func (it *ChunkIterator) Done() bool {
	return it.ci >= len(it.chunks)
}

// DocID returns the current posting's doc_id. Valid only if !Done().
func (it *ChunkIterator) DocID() uint32 {
	return it.chunks[it.ci].DocIDs[it.pi]
}

// Frequency returns the current posting's in-document frequency.
// Valid only if !Done().
func (it *ChunkIterator) Frequency() uint32 {
	return it.chunks[it.ci].Freqs[it.pi]
}

// Positions returns the current posting's position list, or nil if
// positions were not indexed. Valid only if !Done().
func (it *ChunkIterator) Positions() []uint32 {
	c := it.chunks[it.ci]
	if it.pi >= len(c.Positions) {
		return nil
	}
	return c.Positions[it.pi]
}

// Next advances to the next posting, crossing chunk boundaries as
// needed. Returns false once exhausted.
func (it *ChunkIterator) Next() bool {
	if it.Done() {
		return false
	}
	it.pi++
	if it.pi >= len(it.chunks[it.ci].DocIDs) {
		it.ci++
		it.pi = 0
		it.skipEmptyChunks()
	}
	return !it.Done()
}

// Advance moves to the first posting with doc_id >= d, skipping whole
// chunks while their max doc_id (the last, since doc_ids ascend
// within a chunk) is still < d — cheap because it never scans the
// postings of a chunk it skips past entirely. Returns false if
// exhausted.
func (it *ChunkIterator) Advance(d uint32) bool {
	for !it.Done() {
		docIDs := it.chunks[it.ci].DocIDs
		if docIDs[len(docIDs)-1] < d {
			it.ci++
			it.pi = 0
			it.skipEmptyChunks()
			continue
		}
		for it.pi < len(docIDs) && docIDs[it.pi] < d {
			it.pi++
		}
		if it.pi < len(docIDs) {
			return true
		}
		it.ci++
		it.pi = 0
		it.skipEmptyChunks()
	}
	return false
}
