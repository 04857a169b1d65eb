package block

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/nyxsearch/engine/internal/chunk"
	"github.com/nyxsearch/engine/internal/codec"
)

// TestBlockRoundTrip is property P4: encode then decode reproduces
// term_ids, term_offsets, and the chunk-area bytes up to the highest
// used offset.
func TestBlockRoundTrip(t *testing.T) {
	b := New(0, DefaultCapacity)

	c1 := chunk.New(1, codec.VarByte)
	c1.AddDoc(1, 2, nil)
	c1.AddDoc(5, 1, nil)
	enc1 := c1.Encode()

	c2 := chunk.New(2, codec.VarByte)
	c2.AddDoc(3, 1, nil)
	enc2 := c2.Encode()

	b.AddTerm(1)
	b.AddChunkBytes(enc1)
	b.AddTerm(2)
	b.AddChunkBytes(enc2)

	page := b.Encode()
	if len(page) != DefaultCapacity {
		t.Fatalf("page length = %d, want %d", len(page), DefaultCapacity)
	}

	dec, err := decodeBuf(0, page)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(dec.termIDs, []uint32{1, 2}) {
		t.Errorf("termIDs = %v", dec.termIDs)
	}
	if !reflect.DeepEqual(dec.termOffsets, []uint16{0, uint16(len(enc1))}) {
		t.Errorf("termOffsets = %v", dec.termOffsets)
	}
	if !bytes.Equal(dec.chunkArea[:len(enc1)+len(enc2)], append(append([]byte{}, enc1...), enc2...)) {
		t.Errorf("chunk area mismatch")
	}

	if idx := dec.CheckIfTermExists(2); idx != 1 {
		t.Errorf("CheckIfTermExists(2) = %d, want 1", idx)
	}
	if idx := dec.CheckIfTermExists(99); idx != -1 {
		t.Errorf("CheckIfTermExists(99) = %d, want -1", idx)
	}

	chunks, err := dec.DecodeChunksForTerm(0)
	if err != nil {
		t.Fatalf("DecodeChunksForTerm: %v", err)
	}
	if len(chunks) != 1 || !reflect.DeepEqual(chunks[0].DocIDs, []uint32{1, 5}) {
		t.Fatalf("decoded chunks for term 1: %+v", chunks)
	}
}

// TestBlockMultiChunkTerm checks that a term's chunks, stored
// contiguously, all decode back in doc-id order.
func TestBlockMultiChunkTerm(t *testing.T) {
	b := New(0, DefaultCapacity)
	b.AddTerm(5)

	c1 := chunk.New(5, codec.VarByte)
	c1.AddDoc(1, 1, nil)
	b.AddChunkBytes(c1.Encode())

	c2 := chunk.New(5, codec.VarByte)
	c2.AddDoc(2, 1, nil)
	b.AddChunkBytes(c2.Encode())

	dec, err := decodeBuf(0, b.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	chunks, err := dec.DecodeChunksForTerm(0)
	if err != nil {
		t.Fatalf("DecodeChunksForTerm: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].DocIDs[0] != 1 || chunks[1].DocIDs[0] != 2 {
		t.Fatalf("chunk order wrong: %+v", chunks)
	}
}
