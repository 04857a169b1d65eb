package spimi

import (
	"reflect"
	"testing"

	"github.com/nyxsearch/engine/internal/posting"
)

func TestBuilderFlushAndIterate(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(dir, 2) // force a flush after 2 distinct terms

	if err := b.Add(Batch{
		{Word: "apple", DocID: 1, Positions: []uint32{0}},
		{Word: "banana", DocID: 1, Positions: []uint32{1}},
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(Batch{
		{Word: "cherry", DocID: 2, Positions: []uint32{0}},
		{Word: "apple", DocID: 2, Positions: []uint32{3}},
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	runs := b.Runs()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs (one forced by overflow, one final flush), got %d: %v", len(runs), runs)
	}

	gotTerms := make(map[string]posting.List)
	for _, path := range runs {
		it, err := OpenIterator(path)
		if err != nil {
			t.Fatalf("OpenIterator(%s): %v", path, err)
		}
		for it.Next() {
			gotTerms[it.Term()] = append(posting.List{}, it.Postings()...)
		}
		if err := it.Err(); err != nil {
			t.Fatalf("iterator error: %v", err)
		}
		it.Close()
	}

	wantApple := posting.List{
		{DocID: 2, Freq: 1, Positions: []uint32{3}},
	}
	if !reflect.DeepEqual(gotTerms["apple"], wantApple) {
		t.Errorf("second run's apple postings = %v, want %v", gotTerms["apple"], wantApple)
	}
	if _, ok := gotTerms["cherry"]; !ok {
		t.Errorf("expected cherry to appear in some run, terms seen: %v", keys(gotTerms))
	}
}

func TestIteratorOrderIsLexicographic(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(dir, DefaultMaxTerms)
	if err := b.Add(Batch{
		{Word: "zebra", DocID: 1, Positions: []uint32{0}},
		{Word: "apple", DocID: 1, Positions: []uint32{1}},
		{Word: "mango", DocID: 1, Positions: []uint32{2}},
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	runs := b.Runs()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	it, err := OpenIterator(runs[0])
	if err != nil {
		t.Fatalf("OpenIterator: %v", err)
	}
	defer it.Close()

	var order []string
	for it.Next() {
		order = append(order, it.Term())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	want := []string{"apple", "mango", "zebra"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("got order %v, want %v", order, want)
	}
}

func TestEncodeDecodePostingsRoundTrip(t *testing.T) {
	list := posting.List{
		{DocID: 5, Freq: 2, Positions: []uint32{1, 7}},
		{DocID: 9, Freq: 0, Positions: nil},
	}
	data := encodePostings(list)
	got, err := decodePostings(data)
	if err != nil {
		t.Fatalf("decodePostings: %v", err)
	}
	if !reflect.DeepEqual(got, list) {
		t.Fatalf("got %v, want %v", got, list)
	}
}

func keys(m map[string]posting.List) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
