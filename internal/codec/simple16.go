package codec

import "encoding/binary"

// simple16Layouts gives Simple16 its extra granularity over Simple9: 16
// (count, width) combinations instead of 9, so more value-magnitude
// patterns pack densely into a 32-bit word.
var simple16Layouts = [16]simple9Layout{
	{28, 1},
	{14, 2},
	{9, 3},
	{7, 4},
	{5, 5},
	{4, 6},
	{4, 7},
	{3, 8},
	{3, 9},
	{2, 10},
	{2, 11},
	{2, 12},
	{2, 13},
	{2, 14},
	{1, 20},
	{1, 28},
}

// Simple16Codec is Simple9 with a finer 16-entry selector table, stored
// in the top nibble of each 32-bit word exactly like Simple9.
type Simple16Codec struct{}

// Compress prefixes the packed words with a 4-byte count, the same
// self-delimiting trick Simple9Codec uses, so a partially filled final
// word decodes back to exactly len(list) values.
func (Simple16Codec) Compress(list []uint32) []byte {
	out := make([]byte, 4, 4+len(list))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(list)))
	i := 0
	for i < len(list) {
		sel, n := chooseSimple16(list[i:])
		layout := simple16Layouts[sel]
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

func chooseSimple16(list []uint32) (sel, n int) {
	for s, layout := range simple16Layouts {
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
		if count > n {
			sel, n = s, count
		}
	}
	if n == 0 {
		sel, n = 15, 1
	}
	return sel, n
}

func (Simple16Codec) Decompress(data []byte) ([]uint32, error) {
	if len(data) < 4 || (len(data)-4)%4 != 0 {
		return nil, ErrDecode
	}
	n := int(binary.LittleEndian.Uint32(data[0:4]))
	out := make([]uint32, 0, n)
	for off := 4; off < len(data) && len(out) < n; off += 4 {
		word := binary.LittleEndian.Uint32(data[off : off+4])
		sel := word >> 28
		if sel > 15 {
			return nil, ErrDecode
		}
		layout := simple16Layouts[sel]
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
