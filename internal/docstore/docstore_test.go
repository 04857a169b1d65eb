package docstore

import (
	"bytes"
	"sync"
	"testing"
)

func TestReserveIsContiguousAndAtomic(t *testing.T) {
	b := NewBuilder()
	var wg sync.WaitGroup
	starts := make([]uint32, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			starts[i] = b.Reserve(5)
		}(i)
	}
	wg.Wait()

	seen := make(map[uint32]bool)
	for _, s := range starts {
		for d := uint32(0); d < 5; d++ {
			if seen[s+d] {
				t.Fatalf("doc_id %d handed out twice", s+d)
			}
			seen[s+d] = true
		}
	}
	if len(seen) != 40 {
		t.Fatalf("expected 40 distinct doc_ids, got %d", len(seen))
	}
}

func TestAddFileAndAverageLength(t *testing.T) {
	b := NewBuilder()
	first := b.Reserve(2)
	b.AddFile(first, []Metadata{
		{Name: "a.txt", URL: "file://a", Length: 10},
		{Name: "b.txt", URL: "file://b", Length: 20},
	})
	if b.DocCount() != 2 {
		t.Fatalf("DocCount = %d, want 2", b.DocCount())
	}
	if avg := b.AverageLength(); avg != 15 {
		t.Fatalf("AverageLength = %v, want 15", avg)
	}
	if l := b.Length(first + 1); l != 20 {
		t.Fatalf("Length(2) = %d, want 20", l)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	b := NewBuilder()
	first := b.Reserve(3)
	b.AddFile(first, []Metadata{
		{Name: "doc1", URL: "u1", Length: 100},
		{Name: "doc2", URL: "u2", Length: 200},
		{Name: "doc3", URL: "u3", Length: 300},
	})
	store := b.Freeze()

	var buf bytes.Buffer
	if err := store.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DocCount() != 3 {
		t.Fatalf("DocCount = %d, want 3", got.DocCount())
	}
	if got.AvgLen != 200 {
		t.Fatalf("AvgLen = %v, want 200", got.AvgLen)
	}
	meta, ok := got.Get(first + 1)
	if !ok || meta.Name != "doc2" || meta.URL != "u2" || meta.Length != 200 {
		t.Fatalf("Get(%d) = %+v, ok=%v", first+1, meta, ok)
	}
	if _, ok := got.Get(0); ok {
		t.Fatalf("Get(0) should be out of range (doc_ids are 1-based)")
	}
	if _, ok := got.Get(99); ok {
		t.Fatalf("Get(99) should be out of range")
	}
}
