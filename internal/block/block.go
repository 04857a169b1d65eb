// Package block implements the fixed-size on-disk page that holds a
// sorted term directory and a sequence of chunks (spec §4.3).
package block

import (
	"encoding/binary"
	"errors"
	"io"
	"sort"

	"github.com/nyxsearch/engine/internal/chunk"
)

// DefaultCapacity is the default block page size in bytes.
const DefaultCapacity = 64 * 1000

// ErrDecode is returned for malformed or truncated block pages.
var ErrDecode = errors.New("block: corrupt page")

// bytesPerTermEntry is the 4 (term_id) + 2 (offset) accounting unit
// charged against a block's capacity for every term it lists, per
// §4.3's "add_term ... 6 bytes accounted".
const bytesPerTermEntry = 6

// Block is a writer/builder for one B-byte page: term count header,
// sorted term_ids, term_offsets, then the chunk-area bytes.
type Block struct {
	ID       int
	Capacity int

	termIDs     []uint32
	termOffsets []uint16 // offsets relative to the start of the chunk area
	chunkArea   []byte
}

// New creates an empty block builder of the given id and capacity.
func New(id, capacity int) *Block {
	return &Block{ID: id, Capacity: capacity}
}

func (b *Block) headerSize() int {
	return 4 + len(b.termIDs)*bytesPerTermEntry
}

// SpaceLeft reports how many bytes remain in the page for a chunk
// that will require a new AddTerm call first, charging that entry's
// 6-byte header cost against the page up front.
func (b *Block) SpaceLeft() int {
	return b.Capacity - b.headerSize() - bytesPerTermEntry - len(b.chunkArea)
}

// SpaceLeftForExistingTerm reports remaining space assuming no new
// term header entry is added (more chunks for the block's current
// last term).
func (b *Block) SpaceLeftForExistingTerm() int {
	return b.Capacity - b.headerSize() - len(b.chunkArea)
}

// AddTerm records that termID's chunks begin at the current chunk-area
// write position, charging 6 bytes against the block's capacity.
func (b *Block) AddTerm(termID uint32) {
	b.termIDs = append(b.termIDs, termID)
	b.termOffsets = append(b.termOffsets, uint16(len(b.chunkArea)))
}

// AddChunkBytes appends already-encoded chunk bytes to the chunk area.
// The caller must have checked SpaceLeft() first.
func (b *Block) AddChunkBytes(data []byte) {
	b.chunkArea = append(b.chunkArea, data...)
}

// Encode writes the block out as a Capacity-byte page (trailing bytes
// zeroed).
func (b *Block) Encode() []byte {
	buf := make([]byte, b.Capacity)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(b.termIDs)))
	off := 4
	for _, id := range b.termIDs {
		binary.LittleEndian.PutUint32(buf[off:off+4], id)
		off += 4
	}
	for _, o := range b.termOffsets {
		binary.LittleEndian.PutUint16(buf[off:off+2], o)
		off += 2
	}
	copy(buf[off:], b.chunkArea)
	return buf
}

// Decoded is the read-side view of a parsed page.
type Decoded struct {
	ID             int
	termIDs        []uint32
	termOffsets    []uint16
	chunkArea      []byte
	chunkAreaStart int
}

// Decode reads block id's Capacity-byte page from r (which must
// support random access via io.ReaderAt) and parses its header.
func Decode(r io.ReaderAt, id, capacity int) (*Decoded, error) {
	buf := make([]byte, capacity)
	if _, err := r.ReadAt(buf, int64(id)*int64(capacity)); err != nil {
		return nil, ErrDecode
	}
	return decodeBuf(id, buf)
}

func decodeBuf(id int, buf []byte) (*Decoded, error) {
	if len(buf) < 4 {
		return nil, ErrDecode
	}
	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	headerLen := 4 + count*bytesPerTermEntry
	if headerLen > len(buf) {
		return nil, ErrDecode
	}
	termIDs := make([]uint32, count)
	off := 4
	for i := 0; i < count; i++ {
		termIDs[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	termOffsets := make([]uint16, count)
	for i := 0; i < count; i++ {
		termOffsets[i] = binary.LittleEndian.Uint16(buf[off : off+2])
		off += 2
	}
	return &Decoded{
		ID:             id,
		termIDs:        termIDs,
		termOffsets:    termOffsets,
		chunkArea:      buf[off:],
		chunkAreaStart: off,
	}, nil
}

// CheckIfTermExists binary-searches the sorted term_ids for termID,
// returning its index or -1.
func (d *Decoded) CheckIfTermExists(termID uint32) int {
	i := sort.Search(len(d.termIDs), func(i int) bool { return d.termIDs[i] >= termID })
	if i < len(d.termIDs) && d.termIDs[i] == termID {
		return i
	}
	return -1
}

// DecodeChunksForTerm decodes the contiguous run of chunks belonging
// to term_ids[index], stopping at term_offsets[index+1] (or the end of
// the chunk area) or at the first zero size-field sentinel, whichever
// comes first.
func (d *Decoded) DecodeChunksForTerm(index int) ([]*chunk.Decoded, error) {
	if index < 0 || index >= len(d.termIDs) {
		return nil, ErrDecode
	}
	termID := d.termIDs[index]
	start := int(d.termOffsets[index])
	end := len(d.chunkArea)
	if index+1 < len(d.termIDs) {
		end = int(d.termOffsets[index+1])
	}
	if start > end || end > len(d.chunkArea) {
		return nil, ErrDecode
	}

	var chunks []*chunk.Decoded
	pos := start
	for pos < end {
		if pos+4 > len(d.chunkArea) {
			break
		}
		size := binary.LittleEndian.Uint32(d.chunkArea[pos : pos+4])
		if size == 0 {
			break
		}
		dec, err := chunk.Decode(termID, d.chunkArea[pos:])
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, dec)
		pos += dec.EncodedSize
	}
	return chunks, nil
}

// TermIDs exposes the block's sorted term-id list (read-only use by
// callers that need to enumerate, e.g. the `terms` CLI verb).
func (d *Decoded) TermIDs() []uint32 { return d.termIDs }
