// Package chunk implements the smallest on-disk decode unit: up to 128
// postings for one term, compressed with d-gapped doc-ids, plain
// frequencies, and optional per-posting position lists.
package chunk

import (
	"encoding/binary"
	"errors"

	"github.com/nyxsearch/engine/internal/codec"
)

// MaxPostings is the hard cap on postings per chunk (spec §3/§4.2).
const MaxPostings = 128

// ErrFull is returned by AddDoc when the chunk already holds
// MaxPostings postings; the caller must start a new chunk.
var ErrFull = errors.New("chunk: full (129th posting refused)")

// ErrDecode mirrors codec.ErrDecode for malformed chunk bytes.
var ErrDecode = errors.New("chunk: corrupt bytes")

// Chunk accumulates up to MaxPostings postings for one term, in
// strictly increasing doc-id order, and encodes them to the on-disk
// layout described in spec §4.2.
type Chunk struct {
	TermID uint32
	Codec  codec.Kind

	docIDs    []uint32
	freqs     []uint32
	positions [][]uint32 // nil entries if positions disabled
}

// New creates an empty chunk for termID using the given primary codec.
// Per the encoding rule, a chunk that ends up with exactly 128
// postings is re-encoded with PFor-Delta regardless of c.
func New(termID uint32, c codec.Kind) *Chunk {
	return &Chunk{TermID: termID, Codec: c}
}

// Len reports the number of postings currently held.
func (c *Chunk) Len() int { return len(c.docIDs) }

// MaxDocID returns the last (largest) doc-id added, or 0 if empty.
func (c *Chunk) MaxDocID() uint32 {
	if len(c.docIDs) == 0 {
		return 0
	}
	return c.docIDs[len(c.docIDs)-1]
}

// AddDoc appends a posting. docID must be strictly greater than the
// previously added doc-id (caller responsibility, not re-checked here
// beyond the obvious full-chunk guard) — see §4.2.
func (c *Chunk) AddDoc(docID, freq uint32, positions []uint32) error {
	if len(c.docIDs) >= MaxPostings {
		return ErrFull
	}
	c.docIDs = append(c.docIDs, docID)
	c.freqs = append(c.freqs, freq)
	if positions != nil {
		c.positions = append(c.positions, positions)
	}
	return nil
}

// effectiveCodec applies the "128 postings always use PFor-Delta" rule.
func (c *Chunk) effectiveCodec() codec.Kind {
	if len(c.docIDs) == MaxPostings {
		return codec.PForDelta
	}
	return c.Codec
}

// Encode serializes the chunk to its on-disk byte layout.
func (c *Chunk) Encode() []byte {
	eff := c.effectiveCodec()
	cc := codec.For(eff)

	docBytes := codec.CompressDGap(cc, c.docIDs)
	freqBytes := cc.Compress(c.freqs)

	withPositions := len(c.positions) == len(c.docIDs) && len(c.positions) > 0

	// Layout: u32 size, u8 codec, u8 no_of_postings, u32 max_doc_id,
	// u16 doc bytes len, doc bytes, u16 freq bytes len, freq bytes,
	// [u16 pos bytes len, pos bytes]*.
	buf := make([]byte, 0, 16+len(docBytes)+len(freqBytes))
	buf = append(buf, 0, 0, 0, 0) // size placeholder
	buf = append(buf, byte(eff))
	buf = append(buf, byte(len(c.docIDs)))
	var maxDoc [4]byte
	binary.LittleEndian.PutUint32(maxDoc[:], c.MaxDocID())
	buf = append(buf, maxDoc[:]...)

	buf = appendLenPrefixed(buf, docBytes)
	buf = appendLenPrefixed(buf, freqBytes)

	if withPositions {
		for _, pos := range c.positions {
			posBytes := codec.CompressDGap(cc, shiftPositionsUp(pos))
			buf = appendLenPrefixed(buf, posBytes)
		}
	}

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	return buf
}

// Token positions are 0-based, but every codec in this package (and
// PFor-Delta in particular, which pads short blocks with zeros and
// truncates trailing zeros on decode) treats a d-gapped list's
// position-0 entry as indistinguishable from absent data. A term
// whose only occurrence in a document is at position 0 would
// otherwise d-gap to [0] and decode back as an empty list. Position
// lists are therefore stored 1-based on disk, independent of which
// codec ends up encoding them; shiftPositionsDown restores the
// 0-based positions callers expect.
func shiftPositionsUp(pos []uint32) []uint32 {
	out := make([]uint32, len(pos))
	for i, p := range pos {
		out[i] = p + 1
	}
	return out
}

func shiftPositionsDown(pos []uint32) []uint32 {
	for i, p := range pos {
		pos[i] = p - 1
	}
	return pos
}

func appendLenPrefixed(buf, data []byte) []byte {
	var l [2]byte
	binary.LittleEndian.PutUint16(l[:], uint16(len(data)))
	buf = append(buf, l[:]...)
	return append(buf, data...)
}

// Decoded is the materialized form of a decoded chunk: the caller
// reads bytes once and then accesses doc-ids/frequencies/positions as
// plain slices (iterators never see compressed bytes directly).
type Decoded struct {
	TermID      uint32
	DocIDs      []uint32
	Freqs       []uint32
	Positions   [][]uint32 // nil if the chunk carries no positions
	EncodedSize int        // total bytes consumed, for cursor advance
}

// Decode parses one chunk starting at the beginning of data. It
// returns the decoded chunk and does not require the caller to know
// the encoded length in advance (EncodedSize reports it).
func Decode(termID uint32, data []byte) (*Decoded, error) {
	if len(data) < 10 {
		return nil, ErrDecode
	}
	size := binary.LittleEndian.Uint32(data[0:4])
	if size == 0 {
		return nil, ErrDecode
	}
	if uint64(size) > uint64(len(data)) {
		return nil, ErrDecode
	}
	body := data[:size]

	eff := codec.Kind(body[4])
	nPostings := int(body[5])
	// maxDocID at body[6:10] is redundant with DocIDs[last]; kept only
	// as a cheap skip-ahead header for block-max style callers.
	off := 10

	docBytes, off, err := readLenPrefixed(body, off)
	if err != nil {
		return nil, err
	}
	freqBytes, off, err := readLenPrefixed(body, off)
	if err != nil {
		return nil, err
	}

	cc := codec.For(eff)
	docIDs, err := codec.DecompressDGap(cc, docBytes)
	if err != nil {
		return nil, ErrDecode
	}
	freqs, err := cc.Decompress(freqBytes)
	if err != nil {
		return nil, ErrDecode
	}
	if len(docIDs) > nPostings {
		docIDs = docIDs[:nPostings]
	}
	if len(freqs) > nPostings {
		freqs = freqs[:nPostings]
	}

	var positions [][]uint32
	if off < len(body) {
		positions = make([][]uint32, 0, nPostings)
		for i := 0; i < nPostings; i++ {
			var posBytes []byte
			posBytes, off, err = readLenPrefixed(body, off)
			if err != nil {
				return nil, err
			}
			pos, err := codec.DecompressDGap(cc, posBytes)
			if err != nil {
				return nil, ErrDecode
			}
			positions = append(positions, shiftPositionsDown(pos))
		}
	}

	return &Decoded{
		TermID:      termID,
		DocIDs:      docIDs,
		Freqs:       freqs,
		Positions:   positions,
		EncodedSize: int(size),
	}, nil
}

func readLenPrefixed(data []byte, off int) ([]byte, int, error) {
	if off+2 > len(data) {
		return nil, 0, ErrDecode
	}
	l := int(binary.LittleEndian.Uint16(data[off : off+2]))
	off += 2
	if off+l > len(data) {
		return nil, 0, ErrDecode
	}
	return data[off : off+l], off + l, nil
}
