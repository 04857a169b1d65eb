// Package docstore manages per-document metadata: the atomic doc_id
// range allocator producer threads use during ingestion (spec §5),
// and the document_metadata.sidx persistence format (spec §6).
package docstore

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"sync"
	"sync/atomic"
)

// Metadata is one document's stored record.
type Metadata struct {
	Name   string
	URL    string
	Length uint32
}

// Builder accumulates document metadata during ingestion. A shared
// atomic counter hands out doc_id ranges in one fetch-add per file
// (range size = number of docs in that file), so producer threads
// never contend per document; the three backing arrays are appended
// under a short mutex region per file, not per document (spec §5).
type Builder struct {
	nextDocID uint32 // atomic

	mu    sync.Mutex
	names []string
	urls  []string
	sizes []uint32
}

// NewBuilder returns an empty Builder, doc_ids starting at 1 (spec §3:
// "doc_id ≥ 1").
func NewBuilder() *Builder {
	return &Builder{}
}

// Reserve atomically hands out a contiguous range of n doc_ids and
// returns its first id. Safe for concurrent callers. The first id ever
// returned is 1, matching spec §3's doc_id invariant (confirmed
// 1-based by original_source/src/indexer/helper.rs's
// `start_doc_id + term.posting.doc_id + 1`).
func (b *Builder) Reserve(n int) uint32 {
	return uint32(atomic.AddUint32(&b.nextDocID, uint32(n))) - uint32(n) + 1
}

// AddFile appends one file's worth of document records under a single
// short-held mutex, docs[i] receiving doc_id firstDocID+i. Backing
// arrays are 0-indexed internally; doc_id d lives at slice index d-1.
func (b *Builder) AddFile(firstDocID uint32, docs []Metadata) {
	b.mu.Lock()
	defer b.mu.Unlock()

	needed := int(firstDocID) - 1 + len(docs)
	for len(b.names) < needed {
		b.names = append(b.names, "")
		b.urls = append(b.urls, "")
		b.sizes = append(b.sizes, 0)
	}
	for i, d := range docs {
		idx := int(firstDocID) - 1 + i
		b.names[idx] = d.Name
		b.urls[idx] = d.URL
		b.sizes[idx] = d.Length
	}
}

// DocCount returns the number of documents recorded so far.
func (b *Builder) DocCount() int { return len(b.names) }

// AverageLength returns the mean document length across all recorded
// documents, or 0 if none have been recorded.
func (b *Builder) AverageLength() float64 {
	if len(b.sizes) == 0 {
		return 0
	}
	var sum float64
	for _, s := range b.sizes {
		sum += float64(s)
	}
	return sum / float64(len(b.sizes))
}

// Length returns the recorded length of docID, or 0 if out of range.
func (b *Builder) Length(docID uint32) uint32 {
	if docID == 0 || int(docID) > len(b.sizes) {
		return 0
	}
	return b.sizes[docID-1]
}

// Store is the frozen, queryable view of document metadata: a
// document_metadata.sidx image held in memory after Save/Load.
type Store struct {
	AvgLen float64
	docs   []Metadata
}

// Freeze snapshots the builder into a read-only Store.
func (b *Builder) Freeze() *Store {
	b.mu.Lock()
	defer b.mu.Unlock()

	docs := make([]Metadata, len(b.names))
	for i := range docs {
		docs[i] = Metadata{Name: b.names[i], URL: b.urls[i], Length: b.sizes[i]}
	}
	return &Store{AvgLen: b.AverageLength(), docs: docs}
}

// DocCount returns the number of documents in the store.
func (s *Store) DocCount() int { return len(s.docs) }

// Get returns docID's metadata, or the zero value and false if out
// of range. doc_ids are 1-based (spec §3); docID 0 is always absent.
func (s *Store) Get(docID uint32) (Metadata, bool) {
	if docID == 0 || int(docID) > len(s.docs) {
		return Metadata{}, false
	}
	return s.docs[docID-1], true
}

// Length returns docID's recorded length, or 0 if out of range. It
// satisfies merge.DocLengths so the merge writer can score postings
// without importing docstore directly.
func (s *Store) Length(docID uint32) uint32 {
	if docID == 0 || int(docID) > len(s.docs) {
		return 0
	}
	return s.docs[docID-1].Length
}

// Save persists the store in the document_metadata.sidx layout of
// spec §6: header (doc_count u32, avg_len f32), then per doc u32
// name_len, name bytes, u32 url_len, url bytes, u32 length.
func (s *Store) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := writeU32(bw, uint32(len(s.docs))); err != nil {
		return err
	}
	if err := writeF32(bw, float32(s.AvgLen)); err != nil {
		return err
	}
	for _, d := range s.docs {
		if err := writeString(bw, d.Name); err != nil {
			return err
		}
		if err := writeString(bw, d.URL); err != nil {
			return err
		}
		if err := writeU32(bw, d.Length); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reconstructs a Store previously written by Save.
func Load(r io.Reader) (*Store, error) {
	br := bufio.NewReader(r)
	docCount, err := readU32(br)
	if err != nil {
		return nil, err
	}
	avgLen, err := readF32(br)
	if err != nil {
		return nil, err
	}
	docs := make([]Metadata, docCount)
	for i := range docs {
		name, err := readString(br)
		if err != nil {
			return nil, err
		}
		url, err := readString(br)
		if err != nil {
			return nil, err
		}
		length, err := readU32(br)
		if err != nil {
			return nil, err
		}
		docs[i] = Metadata{Name: name, URL: url, Length: length}
	}
	return &Store{AvgLen: float64(avgLen), docs: docs}, nil
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeF32(w io.Writer, v float32) error {
	return writeU32(w, math.Float32bits(v))
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, unexpectedEOF(err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readF32(r io.Reader) (float32, error) {
	v, err := readU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", unexpectedEOF(err)
	}
	return string(buf), nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
