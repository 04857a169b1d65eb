// Package termdir is the in-memory term directory: the mapping from
// term string to term_id plus the parallel metadata arrays the query
// processor consults to build term iterators (spec §4.7).
package termdir

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrDecode is returned when a persisted directory file is malformed.
var ErrDecode = errors.New("termdir: corrupt term directory")

// ChunkBlockMax is the (last_doc_id, max_chunk_score) pair recorded
// per chunk during merge, letting block-max algorithms skip whole
// chunks without decoding them (spec §4.6 step 7, §4.9).
type ChunkBlockMax struct {
	LastDocID uint32
	MaxScore  float32
}

// TermMetadata is the bundle get_term_metadata returns.
type TermMetadata struct {
	TermID        uint32
	Ft            uint32
	MaxScore      float32
	BlockIDs      []uint32
	ChunkBlockMax []ChunkBlockMax
}

// Directory holds term_id assignment plus parallel arrays indexed by
// (term_id - 1): f_t, max_score, one block-id slice per term, and the
// chunk-block-max arrays. No CSR-style offsets array is kept in
// memory; the flattened block_ids array with per-term offsets exists
// only in the file Save writes. Not safe for concurrent
// writers; built single-threaded during merge, then frozen for query.
type Directory struct {
	blockCount int
	docCount   int

	termID map[string]uint32
	terms  []string // terms[id-1] = term string

	ft            []uint32
	maxScore      []float32
	blockIDs      [][]uint32
	chunkBlockMax [][]ChunkBlockMax
}

// New returns an empty directory ready to receive terms in ascending
// term_id order via AddTerm.
func New() *Directory {
	return &Directory{termID: make(map[string]uint32)}
}

// SetBlockCount records the total number of blocks in the index.
func (d *Directory) SetBlockCount(n int) { d.blockCount = n }

// SetDocCount records the total number of documents indexed.
func (d *Directory) SetDocCount(n int) { d.docCount = n }

// BlockCount returns the recorded block count.
func (d *Directory) BlockCount() int { return d.blockCount }

// DocCount returns the recorded document count.
func (d *Directory) DocCount() int { return d.docCount }

// AddTerm assigns the next term_id (1, 2, 3, ...) to term and records
// its metadata. Merge must call this in ascending lexicographic term
// order (spec §4.6 step 9, §5 ordering guarantees).
func (d *Directory) AddTerm(term string, ft uint32, maxScore float32, blockIDs []uint32, cbm []ChunkBlockMax) uint32 {
	id := uint32(len(d.terms) + 1)
	d.termID[term] = id
	d.terms = append(d.terms, term)
	d.ft = append(d.ft, ft)
	d.maxScore = append(d.maxScore, maxScore)
	d.blockIDs = append(d.blockIDs, blockIDs)
	d.chunkBlockMax = append(d.chunkBlockMax, cbm)
	return id
}

// GetTermID returns term's term_id, or 0 if term is absent.
func (d *Directory) GetTermID(term string) uint32 {
	return d.termID[term]
}

// GetTerm returns the term string for a term_id, or "" if out of range.
func (d *Directory) GetTerm(termID uint32) string {
	if termID == 0 || int(termID) > len(d.terms) {
		return ""
	}
	return d.terms[termID-1]
}

// TermCount returns the number of distinct terms in the directory.
func (d *Directory) TermCount() int { return len(d.terms) }

// GetTermMetadata looks up term's full metadata bundle.
func (d *Directory) GetTermMetadata(term string) (TermMetadata, bool) {
	id := d.GetTermID(term)
	if id == 0 {
		return TermMetadata{}, false
	}
	i := id - 1
	return TermMetadata{
		TermID:        id,
		Ft:            d.ft[i],
		MaxScore:      d.maxScore[i],
		BlockIDs:      d.blockIDs[i],
		ChunkBlockMax: d.chunkBlockMax[i],
	}, true
}

// GetBlockIDs returns the block list for termID, or nil if out of range.
func (d *Directory) GetBlockIDs(termID uint32) []uint32 {
	if termID == 0 || int(termID) > len(d.terms) {
		return nil
	}
	return d.blockIDs[termID-1]
}

// GetTermFrequency returns f_t for termID.
func (d *Directory) GetTermFrequency(termID uint32) uint32 {
	if termID == 0 || int(termID) > len(d.terms) {
		return 0
	}
	return d.ft[termID-1]
}

// GetMaxTermScore returns the global max BM25 score recorded for termID.
func (d *Directory) GetMaxTermScore(termID uint32) float32 {
	if termID == 0 || int(termID) > len(d.terms) {
		return 0
	}
	return d.maxScore[termID-1]
}

// GetChunkBlockMax returns the per-chunk (last_doc_id, max_score)
// array recorded for termID.
func (d *Directory) GetChunkBlockMax(termID uint32) []ChunkBlockMax {
	if termID == 0 || int(termID) > len(d.terms) {
		return nil
	}
	return d.chunkBlockMax[termID-1]
}

// Save persists the directory in the term_metadata.sidx layout of
// spec §4.7: header (block_count, doc_count, term_count), then per
// term (in term_id order) f_t, max_score, block offset into the
// flattened block_ids array plus its length, and the chunk-block-max
// list; then the flattened block_ids array; finally the term string
// to term_id map.
func (d *Directory) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := writeU32(bw, uint32(d.blockCount)); err != nil {
		return err
	}
	if err := writeU32(bw, uint32(d.docCount)); err != nil {
		return err
	}
	if err := writeU32(bw, uint32(len(d.terms))); err != nil {
		return err
	}

	offset := uint32(0)
	for i := range d.terms {
		if err := writeU32(bw, d.ft[i]); err != nil {
			return err
		}
		if err := writeF32(bw, d.maxScore[i]); err != nil {
			return err
		}
		if err := writeU32(bw, offset); err != nil {
			return err
		}
		if err := writeU32(bw, uint32(len(d.blockIDs[i]))); err != nil {
			return err
		}
		offset += uint32(len(d.blockIDs[i]))

		cbm := d.chunkBlockMax[i]
		if err := writeU32(bw, uint32(len(cbm))); err != nil {
			return err
		}
		for _, c := range cbm {
			if err := writeU32(bw, c.LastDocID); err != nil {
				return err
			}
			if err := writeF32(bw, c.MaxScore); err != nil {
				return err
			}
		}
	}

	for _, ids := range d.blockIDs {
		for _, id := range ids {
			if err := writeU32(bw, id); err != nil {
				return err
			}
		}
	}

	for _, term := range d.terms {
		if err := writeU32(bw, uint32(len(term))); err != nil {
			return err
		}
		if _, err := bw.WriteString(term); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load reconstructs a Directory previously written by Save.
func Load(r io.Reader) (*Directory, error) {
	br := bufio.NewReader(r)

	blockCount, err := readU32(br)
	if err != nil {
		return nil, err
	}
	docCount, err := readU32(br)
	if err != nil {
		return nil, err
	}
	termCount, err := readU32(br)
	if err != nil {
		return nil, err
	}

	d := &Directory{
		blockCount: int(blockCount),
		docCount:   int(docCount),
		termID:     make(map[string]uint32, termCount),
		terms:      make([]string, termCount),
		ft:         make([]uint32, termCount),
		maxScore:   make([]float32, termCount),
		blockIDs:   make([][]uint32, termCount),
	}
	d.chunkBlockMax = make([][]ChunkBlockMax, termCount)

	offsets := make([]uint32, termCount)
	lengths := make([]uint32, termCount)

	for i := uint32(0); i < termCount; i++ {
		ft, err := readU32(br)
		if err != nil {
			return nil, err
		}
		ms, err := readF32(br)
		if err != nil {
			return nil, err
		}
		off, err := readU32(br)
		if err != nil {
			return nil, err
		}
		n, err := readU32(br)
		if err != nil {
			return nil, err
		}
		nCBM, err := readU32(br)
		if err != nil {
			return nil, err
		}
		cbm := make([]ChunkBlockMax, nCBM)
		for j := range cbm {
			last, err := readU32(br)
			if err != nil {
				return nil, err
			}
			score, err := readF32(br)
			if err != nil {
				return nil, err
			}
			cbm[j] = ChunkBlockMax{LastDocID: last, MaxScore: score}
		}

		d.ft[i] = ft
		d.maxScore[i] = ms
		offsets[i] = off
		lengths[i] = n
		d.chunkBlockMax[i] = cbm
	}

	totalBlockIDs := uint32(0)
	for _, n := range lengths {
		totalBlockIDs += n
	}
	flat := make([]uint32, totalBlockIDs)
	for i := range flat {
		v, err := readU32(br)
		if err != nil {
			return nil, err
		}
		flat[i] = v
	}
	for i := uint32(0); i < termCount; i++ {
		d.blockIDs[i] = flat[offsets[i] : offsets[i]+lengths[i]]
	}

	for i := uint32(0); i < termCount; i++ {
		n, err := readU32(br)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, unexpectedEOF(err)
		}
		term := string(buf)
		d.terms[i] = term
		d.termID[term] = i + 1
	}

	return d, nil
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

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
