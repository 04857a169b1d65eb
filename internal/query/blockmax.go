package query

import "github.com/nyxsearch/engine/internal/termdir"

// BlockMaxIterator walks a term's ChunkBlockMax entries, letting
// dynamic-pruning algorithms bound or skip whole chunks without
// decoding them (spec §4.9).
type BlockMaxIterator struct {
	entries []termdir.ChunkBlockMax
	i       int
}

// NewBlockMaxIterator wraps a term's chunk-block-max array.
func NewBlockMaxIterator(entries []termdir.ChunkBlockMax) *BlockMaxIterator {
	return &BlockMaxIterator{entries: entries}
}

// Done reports whether every entry has been passed.
func (b *BlockMaxIterator) Done() bool {
	return b.i >= len(b.entries)
}

// Advance moves the pointer to the first entry with last_doc_id >= d.
func (b *BlockMaxIterator) Advance(d uint32) {
	for b.i < len(b.entries) && b.entries[b.i].LastDocID < d {
		b.i++
	}
}

// Score returns the current entry's max BM25 score, or 0 if exhausted.
func (b *BlockMaxIterator) Score() float64 {
	if b.Done() {
		return 0
	}
	return float64(b.entries[b.i].MaxScore)
}

// Last returns the current entry's last doc_id, or MaxUint32 if
// exhausted (nothing left to bound).
func (b *BlockMaxIterator) Last() uint32 {
	if b.Done() {
		return infDocID
	}
	return b.entries[b.i].LastDocID
}
