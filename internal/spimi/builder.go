// Package spimi implements the SPIMI-style external build pipeline:
// an in-memory dictionary accumulator that flushes sorted temporary
// run files on overflow, plus the iterator that streams a run back.
package spimi

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/nyxsearch/engine/internal/posting"
)

// DefaultMaxTerms is the default cap on distinct terms held in RAM
// before a run is flushed (spec §4.4).
const DefaultMaxTerms = 40000

// Term is one (word, doc_id, positions) contribution, the unit a
// producer pushes through the batch channel (spec §4.4/§5).
type Term struct {
	Word      string
	DocID     uint32
	Positions []uint32
}

// Batch is a group of Terms delivered to the builder in one channel
// send, amortizing channel overhead across many postings.
type Batch []Term

// Builder accumulates an in-memory dictionary and flushes it to
// `.tmpidx` run files in dir when the distinct-term cap is exceeded.
// It is not safe for concurrent use: the design runs it on a single
// dedicated consumer goroutine (spec §5).
type Builder struct {
	dir      string
	maxTerms int
	seq      int

	dict map[string]map[uint32][]uint32 // term -> docID -> positions
	runs []string
}

// NewBuilder creates a builder that flushes run files into dir.
func NewBuilder(dir string, maxTerms int) *Builder {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}
	return &Builder{
		dir:      dir,
		maxTerms: maxTerms,
		dict:     make(map[string]map[uint32][]uint32),
	}
}

// Add merges one batch into the in-memory dictionary, flushing a run
// file first if the batch would push the dictionary over its cap.
func (b *Builder) Add(batch Batch) error {
	for _, t := range batch {
		docs, ok := b.dict[t.Word]
		if !ok {
			if len(b.dict) >= b.maxTerms {
				if err := b.flush(); err != nil {
					return err
				}
				docs = nil
			}
			docs = make(map[uint32][]uint32)
			b.dict[t.Word] = docs
		}
		docs[t.DocID] = append(docs[t.DocID], t.Positions...)
	}
	return nil
}

// Flush force-flushes the current dictionary (stream end, spec §4.4).
// It is a no-op if the dictionary is empty.
func (b *Builder) Flush() error {
	if len(b.dict) == 0 {
		return nil
	}
	return b.flush()
}

// Runs returns the paths of every run file written so far.
func (b *Builder) Runs() []string { return b.runs }

func (b *Builder) flush() error {
	terms := make([]string, 0, len(b.dict))
	for term := range b.dict {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	path := filepath.Join(b.dir, fmt.Sprintf("run-%05d.tmpidx", b.seq))
	b.seq++

	entries := make([]runEntry, 0, len(terms))
	for _, term := range terms {
		docs := b.dict[term]
		docIDs := make([]uint32, 0, len(docs))
		for id := range docs {
			docIDs = append(docIDs, id)
		}
		sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })

		list := make(posting.List, 0, len(docIDs))
		for _, id := range docIDs {
			pos := docs[id]
			list = append(list, posting.Posting{DocID: id, Freq: uint32(len(pos)), Positions: pos})
		}
		entries = append(entries, runEntry{term: term, postings: list})
	}

	if err := writeRun(path, entries); err != nil {
		return err
	}
	b.runs = append(b.runs, path)
	b.dict = make(map[string]map[uint32][]uint32)
	return nil
}
