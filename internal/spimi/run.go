package spimi

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/nyxsearch/engine/internal/posting"
)

// ErrDecode is returned when a run file is truncated or malformed.
var ErrDecode = errors.New("spimi: corrupt run file")

type runEntry struct {
	term     string
	postings posting.List
}

// writeRun writes entries (already sorted lexicographically by term)
// to path in the layout described in spec §4.4:
//
//	u32 term_count
//	repeat:
//	  u32 term_length, term_bytes,
//	  u32 postings_byte_length, postings_bytes
//
// Each posting in postings_bytes is (u32 doc_id, u32 position_count,
// u32[] positions), little-endian — a simple, not space-optimized,
// interchange format since runs are short-lived.
func writeRun(path string, entries []runEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(entries)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	for _, e := range entries {
		if err := writeUint32(w, uint32(len(e.term))); err != nil {
			return err
		}
		if _, err := w.WriteString(e.term); err != nil {
			return err
		}

		postingsBytes := encodePostings(e.postings)
		if err := writeUint32(w, uint32(len(postingsBytes))); err != nil {
			return err
		}
		if _, err := w.Write(postingsBytes); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func encodePostings(list posting.List) []byte {
	size := 0
	for _, p := range list {
		size += 4 + 4 + 4*len(p.Positions)
	}
	buf := make([]byte, 0, size)
	var tmp [4]byte
	for _, p := range list {
		binary.LittleEndian.PutUint32(tmp[:], p.DocID)
		buf = append(buf, tmp[:]...)
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(p.Positions)))
		buf = append(buf, tmp[:]...)
		for _, pos := range p.Positions {
			binary.LittleEndian.PutUint32(tmp[:], pos)
			buf = append(buf, tmp[:]...)
		}
	}
	return buf
}

func decodePostings(data []byte) (posting.List, error) {
	var list posting.List
	off := 0
	for off < len(data) {
		if off+8 > len(data) {
			return nil, ErrDecode
		}
		docID := binary.LittleEndian.Uint32(data[off : off+4])
		n := binary.LittleEndian.Uint32(data[off+4 : off+8])
		off += 8
		need := int(n) * 4
		if off+need > len(data) {
			return nil, ErrDecode
		}
		var positions []uint32
		if n > 0 {
			positions = make([]uint32, n)
		}
		for i := range positions {
			positions[i] = binary.LittleEndian.Uint32(data[off : off+4])
			off += 4
		}
		list = append(list, posting.Posting{DocID: docID, Freq: n, Positions: positions})
	}
	return list, nil
}
