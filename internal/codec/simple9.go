package codec

import "encoding/binary"

// simple9Layout describes one of the nine Simple9 selectors: how many
// values fit in the 28 usable payload bits of a 32-bit word, and how
// many bits each value gets.
type simple9Layout struct {
	count int
	width uint
}

var simple9Layouts = [9]simple9Layout{
	{28, 1},
	{14, 2},
	{9, 3},
	{7, 4},
	{5, 5},
	{4, 7},
	{3, 9},
	{2, 14},
	{1, 28},
}

// Simple9Codec packs as many equal-width fields into the 28 payload
// bits of a 32-bit word as fit, selected by a 4-bit selector stored in
// the top nibble of the word.
type Simple9Codec struct{}

// Compress prefixes the packed words with a 4-byte count so that a
// final word whose tail slots go unused (list length not a multiple of
// the selector's count) can still be decoded back to exactly len(list)
// values.
func (Simple9Codec) Compress(list []uint32) []byte {
	out := make([]byte, 4, 4+len(list))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(list)))
	i := 0
	for i < len(list) {
		sel, n := chooseSimple9(list[i:])
		layout := simple9Layouts[sel]
		var word uint32
		for j := 0; j < n; j++ {
			word |= list[i+j] << (layout.width * uint(j))
		}
		word |= uint32(sel) << 28
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], word)
		out = append(out, tmp[:]...)
		i += n
	}
	return out
}

// chooseSimple9 picks the selector that packs the most values from
// list into one word, given their magnitudes.
func chooseSimple9(list []uint32) (sel, n int) {
	for s, layout := range simple9Layouts {
		count := layout.count
		if count > len(list) {
			count = len(list)
		}
		ok := true
		for j := 0; j < count; j++ {
			if bitsNeeded(list[j]) > layout.width {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		// Prefer the selector that packs the most values; layouts are
		// ordered by descending count only up to width constraints, so
		// scan all and keep the best feasible one.
		if count > n {
			sel, n = s, count
		}
	}
	if n == 0 {
		// Value too large even for a single 28-bit field: clamp to
		// width-28 with one value (caller guarantees doc-ids/freqs fit
		// in 32 bits; 28-bit overflow values are not expected from
		// this engine's inputs but we must not wedge the encoder).
		sel, n = 8, 1
	}
	return sel, n
}

func bitsNeeded(v uint32) uint {
	n := uint(0)
	for v > 0 {
		n++
		v >>= 1
	}
	if n == 0 {
		n = 1
	}
	return n
}

func (Simple9Codec) Decompress(data []byte) ([]uint32, error) {
	if len(data) < 4 || (len(data)-4)%4 != 0 {
		return nil, ErrDecode
	}
	n := int(binary.LittleEndian.Uint32(data[0:4]))
	out := make([]uint32, 0, n)
	for off := 4; off < len(data) && len(out) < n; off += 4 {
		word := binary.LittleEndian.Uint32(data[off : off+4])
		sel := word >> 28
		if sel > 8 {
			return nil, ErrDecode
		}
		layout := simple9Layouts[sel]
		mask := uint32(1)<<layout.width - 1
		for j := 0; j < layout.count && len(out) < n; j++ {
			out = append(out, (word>>(layout.width*uint(j)))&mask)
		}
	}
	if len(out) != n {
		return nil, ErrDecode
	}
	return out, nil
}
