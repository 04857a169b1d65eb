package query

import (
	"bytes"
	"testing"

	"github.com/nyxsearch/engine/internal/blockcache"
	"github.com/nyxsearch/engine/internal/codec"
	"github.com/nyxsearch/engine/internal/docstore"
	"github.com/nyxsearch/engine/internal/merge"
	"github.com/nyxsearch/engine/internal/scoring"
	"github.com/nyxsearch/engine/internal/spimi"
)

func buildTestIndex(t *testing.T) (*Processor, *docstore.Store) {
	t.Helper()
	dir := t.TempDir()
	b := spimi.NewBuilder(dir, spimi.DefaultMaxTerms)
	if err := b.Add(spimi.Batch{
		{Word: "apple", DocID: 1, Positions: []uint32{0}},
		{Word: "banana", DocID: 1, Positions: []uint32{1}},
		{Word: "apple", DocID: 2, Positions: []uint32{0, 3}},
		{Word: "cherry", DocID: 3, Positions: []uint32{0}},
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	docsBuilder := docstore.NewBuilder()
	first := docsBuilder.Reserve(3)
	docsBuilder.AddFile(first, []docstore.Metadata{
		{Name: "doc0", URL: "u0", Length: 10},
		{Name: "doc1", URL: "u1", Length: 20},
		{Name: "doc2", URL: "u2", Length: 5},
	})
	store := docsBuilder.Freeze()

	var out bytes.Buffer
	directory, err := merge.Merge(b.Runs(), store, store.AvgLen, &out, merge.Config{
		Codec:         codec.VarByte,
		Params:        scoring.DefaultParams,
		WithPositions: true,
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	p, err := NewProcessor(directory, store, bytes.NewReader(out.Bytes()), 64000, blockcache.NewLRU(8), AlgorithmWAND, scoring.DefaultParams)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return p, store
}

func TestProcessorQueryReturnsMatchingDocuments(t *testing.T) {
	p, _ := buildTestIndex(t)

	results, err := p.Query("apple")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for 'apple', got %d: %v", len(results), results)
	}
	seen := map[uint32]bool{}
	for _, r := range results {
		seen[r.DocID] = true
		if r.Metadata.Name == "" {
			t.Fatalf("expected metadata translated for doc %d", r.DocID)
		}
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("expected docs 1 and 2, got %v", results)
	}
}

func TestProcessorQueryUnknownTermReturnsEmpty(t *testing.T) {
	p, _ := buildTestIndex(t)

	results, err := p.Query("nonexistentword")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestProcessorQueryCacheReturnsSameResults(t *testing.T) {
	p, _ := buildTestIndex(t)

	first, err := p.Query("apple banana")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	second, err := p.Query("apple banana")
	if err != nil {
		t.Fatalf("Query (cached): %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cached query returned different result count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].DocID != second[i].DocID || first[i].Score != second[i].Score {
			t.Fatalf("cached result mismatch at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestNewProcessorRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewProcessor(nil, nil, nil, 64000, nil, "bogus", scoring.DefaultParams)
	if err != ErrUnknownAlgorithm {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
}
