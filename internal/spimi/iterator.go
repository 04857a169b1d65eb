package spimi

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/nyxsearch/engine/internal/posting"
)

// runReadBuffer matches the ~3MB buffered refill spec §4.5 calls for
// when streaming a run file back during the merge pass.
const runReadBuffer = 3 << 20

// Iterator streams the (term, postings) pairs of one run file back in
// the lexicographic order writeRun wrote them in. It holds exactly one
// term's postings decoded at a time.
type Iterator struct {
	f  *os.File
	r  *bufio.Reader
	n  uint32
	i  uint32

	currentTerm     string
	currentPostings posting.List
	err             error
}

// OpenIterator opens path for streaming. Call Close when done.
func OpenIterator(path string) (*Iterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := bufio.NewReaderSize(f, runReadBuffer)
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		f.Close()
		return nil, err
	}
	it := &Iterator{
		f: f,
		r: r,
		n: binary.LittleEndian.Uint32(hdr[:]),
	}
	return it, nil
}

// Term returns the current term. Valid only while Next returns true.
func (it *Iterator) Term() string { return it.currentTerm }

// Postings returns the current term's postings. Valid only while Next
// returns true.
func (it *Iterator) Postings() posting.List { return it.currentPostings }

// Next advances to the next (term, postings) pair, returning false at
// end of stream or on error (check Err).
func (it *Iterator) Next() bool {
	if it.err != nil || it.i >= it.n {
		return false
	}
	if err := it.advance(); err != nil {
		if err != io.EOF {
			it.err = err
		}
		return false
	}
	return true
}

// Err returns the first error encountered, if any.
func (it *Iterator) Err() error { return it.err }

// Close releases the underlying file handle.
func (it *Iterator) Close() error { return it.f.Close() }

func (it *Iterator) advance() error {
	if it.i >= it.n {
		return io.EOF
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(it.r, lenBuf[:]); err != nil {
		return unexpectedEOF(err)
	}
	termLen := binary.LittleEndian.Uint32(lenBuf[:])
	termBytes := make([]byte, termLen)
	if _, err := io.ReadFull(it.r, termBytes); err != nil {
		return unexpectedEOF(err)
	}

	if _, err := io.ReadFull(it.r, lenBuf[:]); err != nil {
		return unexpectedEOF(err)
	}
	postingsLen := binary.LittleEndian.Uint32(lenBuf[:])
	postingsBytes := make([]byte, postingsLen)
	if _, err := io.ReadFull(it.r, postingsBytes); err != nil {
		return unexpectedEOF(err)
	}

	list, err := decodePostings(postingsBytes)
	if err != nil {
		return err
	}

	it.currentTerm = string(termBytes)
	it.currentPostings = list
	it.i++
	return nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
