package query

import (
	"reflect"
	"testing"

	"github.com/nyxsearch/engine/internal/scoring"
)

// fakeIterator is a minimal in-memory Iterator for exercising the
// retrieval algorithms without going through chunk decoding.
type fakeIterator struct {
	docIDs   []uint32
	freqs    []uint32
	i        int
	maxScore float64
	ft       int
	cbmLast  []uint32 // last_doc_id per synthetic "chunk" (all one chunk here)
	cbmScore []float64
	ci       int
}

func newFakeIterator(docIDs, freqs []uint32, maxScore float64, ft int) *fakeIterator {
	return &fakeIterator{
		docIDs:   docIDs,
		freqs:    freqs,
		maxScore: maxScore,
		ft:       ft,
		cbmLast:  []uint32{docIDs[len(docIDs)-1]},
		cbmScore: []float64{maxScore},
	}
}

func (f *fakeIterator) MaxScore() float64    { return f.maxScore }
func (f *fakeIterator) PostingCount() int    { return f.ft }
func (f *fakeIterator) IsComplete() bool     { return f.i >= len(f.docIDs) }
func (f *fakeIterator) CurrentDocID() uint32 {
	if f.IsComplete() {
		return infDocID
	}
	return f.docIDs[f.i]
}
func (f *fakeIterator) CurrentDocFrequency() uint32 {
	if f.IsComplete() {
		return 0
	}
	return f.freqs[f.i]
}
func (f *fakeIterator) CurrentDocScore(n int, docLen, avgLen float64) float64 {
	if f.IsComplete() {
		return 0
	}
	return scoring.Score(scoring.DefaultParams, n, f.ft, int(f.freqs[f.i]), docLen, avgLen)
}
func (f *fakeIterator) MoveBlockMaxIterator(d uint32) {
	for f.ci < len(f.cbmLast) && f.cbmLast[f.ci] < d {
		f.ci++
	}
}
func (f *fakeIterator) BlockMaxScore() float64 {
	if f.ci >= len(f.cbmLast) {
		return 0
	}
	return f.cbmScore[f.ci]
}
func (f *fakeIterator) BlockMaxLastDocID() uint32 {
	if f.ci >= len(f.cbmLast) {
		return infDocID
	}
	return f.cbmLast[f.ci]
}
func (f *fakeIterator) Next() bool {
	if f.IsComplete() {
		return false
	}
	f.i++
	return !f.IsComplete()
}
func (f *fakeIterator) Advance(d uint32) bool {
	for !f.IsComplete() && f.docIDs[f.i] < d {
		f.i++
	}
	return !f.IsComplete()
}

func uniformDocLen(uint32) float64 { return 10 }

func TestWANDFindsTopDocuments(t *testing.T) {
	// "apple" appears in docs 1,2,3; "banana" only in doc 2.
	apple := newFakeIterator([]uint32{1, 2, 3}, []uint32{1, 1, 1}, 2.0, 5)
	banana := newFakeIterator([]uint32{2}, []uint32{3}, 3.0, 2)

	results := WAND([]Iterator{apple, banana}, 10, 20, uniformDocLen, 10)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d: %v", len(results), results)
	}
	// doc 2 matches both terms, so it should score highest.
	if results[0].DocID != 2 {
		t.Fatalf("expected doc 2 to rank first, got %v", results)
	}
}

func TestWANDRespectsTopK(t *testing.T) {
	apple := newFakeIterator([]uint32{1, 2, 3, 4, 5}, []uint32{1, 1, 1, 1, 1}, 1.0, 5)
	results := WAND([]Iterator{apple}, 2, 20, uniformDocLen, 10)
	if len(results) != 2 {
		t.Fatalf("expected top-2 results, got %d", len(results))
	}
}

func TestBlockMaxWANDMatchesWANDResults(t *testing.T) {
	apple := func() *fakeIterator { return newFakeIterator([]uint32{1, 2, 3}, []uint32{1, 1, 1}, 2.0, 5) }
	banana := func() *fakeIterator { return newFakeIterator([]uint32{2}, []uint32{3}, 3.0, 2) }

	want := WAND([]Iterator{apple(), banana()}, 10, 20, uniformDocLen, 10)
	got := BlockMaxWAND([]Iterator{apple(), banana()}, 10, 20, uniformDocLen, 10)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BlockMaxWAND = %v, want %v (same as WAND)", got, want)
	}
}

func TestMaxScoreAndBlockMaxMaxScoreAgreeWithWAND(t *testing.T) {
	apple := func() *fakeIterator { return newFakeIterator([]uint32{1, 2, 3, 4}, []uint32{1, 2, 1, 3}, 2.0, 5) }
	banana := func() *fakeIterator { return newFakeIterator([]uint32{2, 4}, []uint32{3, 1}, 3.0, 2) }

	wand := WAND([]Iterator{apple(), banana()}, 10, 20, uniformDocLen, 10)
	ms := MaxScore([]Iterator{apple(), banana()}, 10, 20, uniformDocLen, 10)
	bmms := BlockMaxMaxScore([]Iterator{apple(), banana()}, 10, 20, uniformDocLen, 10)

	if !reflect.DeepEqual(ms, wand) {
		t.Fatalf("MaxScore = %v, want %v", ms, wand)
	}
	if !reflect.DeepEqual(bmms, wand) {
		t.Fatalf("BlockMaxMaxScore = %v, want %v", bmms, wand)
	}
}

func TestConjunctiveANDOnlyReturnsDocsPresentInAllTerms(t *testing.T) {
	apple := newFakeIterator([]uint32{1, 2, 3, 4}, []uint32{1, 1, 1, 1}, 2.0, 4)
	banana := newFakeIterator([]uint32{2, 4, 6}, []uint32{1, 1, 1}, 3.0, 3)

	results := ConjunctiveAND([]Iterator{apple, banana}, 10, 20, uniformDocLen, 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results (docs 2 and 4), got %d: %v", len(results), results)
	}
	docs := map[uint32]bool{}
	for _, r := range results {
		docs[r.DocID] = true
	}
	if !docs[2] || !docs[4] {
		t.Fatalf("expected docs {2,4}, got %v", results)
	}
}

func TestConjunctiveANDHolisticMatchesBasicVariant(t *testing.T) {
	apple := func() *fakeIterator { return newFakeIterator([]uint32{1, 2, 3, 4}, []uint32{1, 1, 1, 1}, 2.0, 4) }
	banana := func() *fakeIterator { return newFakeIterator([]uint32{2, 4, 6}, []uint32{1, 1, 1}, 3.0, 3) }

	basic := ConjunctiveAND([]Iterator{apple(), banana()}, 10, 20, uniformDocLen, 10)
	holistic := ConjunctiveANDHolistic([]Iterator{apple(), banana()}, 10, 20, uniformDocLen, 10)
	if !reflect.DeepEqual(basic, holistic) {
		t.Fatalf("holistic = %v, want %v (same as basic)", holistic, basic)
	}
}
