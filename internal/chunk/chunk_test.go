package chunk

import (
	"reflect"
	"testing"

	"github.com/nyxsearch/engine/internal/codec"
)

// TestChunkRoundTrip is scenario S2: Simple16, three postings with
// positions, round trip is identity and max_doc_id is correct.
func TestChunkRoundTrip(t *testing.T) {
	c := New(7, codec.Simple16)
	docIDs := []uint32{100, 200, 300}
	freqs := []uint32{3, 2, 4}
	positions := [][]uint32{
		{1, 5, 10},
		{20, 25},
		{30, 35, 40, 45},
	}
	for i := range docIDs {
		if err := c.AddDoc(docIDs[i], freqs[i], positions[i]); err != nil {
			t.Fatalf("AddDoc: %v", err)
		}
	}
	if c.MaxDocID() != 300 {
		t.Fatalf("MaxDocID = %d, want 300", c.MaxDocID())
	}

	enc := c.Encode()
	dec, err := Decode(7, enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(dec.DocIDs, docIDs) {
		t.Errorf("DocIDs = %v, want %v", dec.DocIDs, docIDs)
	}
	if !reflect.DeepEqual(dec.Freqs, freqs) {
		t.Errorf("Freqs = %v, want %v", dec.Freqs, freqs)
	}
	if !reflect.DeepEqual(dec.Positions, positions) {
		t.Errorf("Positions = %v, want %v", dec.Positions, positions)
	}
}

// TestChunkRoundTripNoPositions covers P3 without positions enabled.
func TestChunkRoundTripNoPositions(t *testing.T) {
	c := New(1, codec.VarByte)
	docIDs := []uint32{1, 2, 5, 9}
	freqs := []uint32{1, 3, 2, 1}
	for i := range docIDs {
		if err := c.AddDoc(docIDs[i], freqs[i], nil); err != nil {
			t.Fatalf("AddDoc: %v", err)
		}
	}
	dec, err := Decode(1, c.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(dec.DocIDs, docIDs) || !reflect.DeepEqual(dec.Freqs, freqs) {
		t.Fatalf("round trip mismatch: %+v", dec)
	}
	if dec.Positions != nil {
		t.Fatalf("expected no positions, got %v", dec.Positions)
	}
}

// TestChunkFullUsesPForDelta checks the encoding rule in §4.2: exactly
// 128 postings always uses PFor-Delta regardless of the chunk's
// configured primary codec.
func TestChunkFullUsesPForDelta(t *testing.T) {
	c := New(1, codec.VarByte)
	for i := 0; i < MaxPostings; i++ {
		if err := c.AddDoc(uint32(i+1), 1, nil); err != nil {
			t.Fatalf("AddDoc #%d: %v", i, err)
		}
	}
	if err := c.AddDoc(uint32(MaxPostings+1), 1, nil); err != ErrFull {
		t.Fatalf("129th AddDoc: got %v, want ErrFull", err)
	}
	enc := c.Encode()
	if codec.Kind(enc[4]) != codec.PForDelta {
		t.Fatalf("full chunk encoded with %v, want PForDelta", codec.Kind(enc[4]))
	}
	dec, err := Decode(1, enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(dec.DocIDs) != MaxPostings {
		t.Fatalf("decoded %d postings, want %d", len(dec.DocIDs), MaxPostings)
	}
}

// TestChunkPositionZeroSurvivesForcedPForDelta guards against a term
// whose sole occurrence in a document sits at token position 0: d-gapped
// and forced through PFor-Delta at 128 postings, a naive encoding would
// truncate that single [0] position list to empty on decode.
func TestChunkPositionZeroSurvivesForcedPForDelta(t *testing.T) {
	c := New(1, codec.VarByte)
	for i := 0; i < MaxPostings; i++ {
		if err := c.AddDoc(uint32(i+1), 1, []uint32{0}); err != nil {
			t.Fatalf("AddDoc #%d: %v", i, err)
		}
	}
	enc := c.Encode()
	if codec.Kind(enc[4]) != codec.PForDelta {
		t.Fatalf("full chunk encoded with %v, want PForDelta", codec.Kind(enc[4]))
	}
	dec, err := Decode(1, enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(dec.Positions) != MaxPostings {
		t.Fatalf("decoded %d position lists, want %d", len(dec.Positions), MaxPostings)
	}
	for i, pos := range dec.Positions {
		if !reflect.DeepEqual(pos, []uint32{0}) {
			t.Fatalf("posting %d positions = %v, want [0]", i, pos)
		}
	}
}
