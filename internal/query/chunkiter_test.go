package query

import (
	"testing"

	"github.com/nyxsearch/engine/internal/chunk"
	"github.com/nyxsearch/engine/internal/codec"
)

func buildChunks(t *testing.T, groups [][]uint32) []*chunk.Decoded {
	t.Helper()
	var out []*chunk.Decoded
	for _, docIDs := range groups {
		c := chunk.New(1, codec.VarByte)
		for _, d := range docIDs {
			if err := c.AddDoc(d, 1, nil); err != nil {
				t.Fatalf("AddDoc: %v", err)
			}
		}
		dec, err := chunk.Decode(1, c.Encode())
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		out = append(out, dec)
	}
	return out
}

func TestChunkIteratorWalksAllChunks(t *testing.T) {
	chunks := buildChunks(t, [][]uint32{{1, 3, 5}, {8, 9}})
	it := NewChunkIterator(chunks)

	var got []uint32
	for !it.Done() {
		got = append(got, it.DocID())
		it.Next()
	}
	want := []uint32{1, 3, 5, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestChunkIteratorAdvanceSkipsChunks(t *testing.T) {
	chunks := buildChunks(t, [][]uint32{{1, 2}, {10, 20}, {30, 40}})
	it := NewChunkIterator(chunks)

	if !it.Advance(25) {
		t.Fatal("expected Advance(25) to find a posting")
	}
	if got := it.DocID(); got != 30 {
		t.Fatalf("DocID = %d, want 30", got)
	}
}

func TestChunkIteratorAdvancePastEndIsDone(t *testing.T) {
	chunks := buildChunks(t, [][]uint32{{1, 2, 3}})
	it := NewChunkIterator(chunks)
	if it.Advance(100) {
		t.Fatal("expected Advance past the last doc_id to report exhausted")
	}
	if !it.Done() {
		t.Fatal("expected Done() after advancing past the end")
	}
}
