// Package codec implements the integer-list compressors used to store
// posting lists on disk: Var-Byte, Simple9, Simple16, PFor-Delta and
// Rice, each with a d-gap variant layered on top.
package codec

import "errors"

// ErrDecode is returned when a decoder encounters a byte sequence that
// cannot have been produced by the matching encoder, or would require
// reading past the end of the supplied slice.
var ErrDecode = errors.New("codec: corrupt or truncated data")

// Kind names one of the five supported codecs. It is the tagged-variant
// analogue of the Rust source's compressor enum.
type Kind uint8

const (
	VarByte Kind = iota
	Simple9
	Simple16
	PForDelta
	Rice
)

func (k Kind) String() string {
	switch k {
	case VarByte:
		return "varbyte"
	case Simple9:
		return "simple9"
	case Simple16:
		return "simple16"
	case PForDelta:
		return "pfordelta"
	case Rice:
		return "rice"
	default:
		return "unknown"
	}
}

// ParseKind maps a configuration string (spec §6: varbyte|simple9|
// simple16|pfordelta|rice) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "varbyte":
		return VarByte, nil
	case "simple9":
		return Simple9, nil
	case "simple16":
		return Simple16, nil
	case "pfordelta":
		return PForDelta, nil
	case "rice":
		return Rice, nil
	default:
		return 0, errors.New("codec: unknown algorithm " + s)
	}
}

// Codec compresses and decompresses a finite sequence of u32 values.
type Codec interface {
	Compress(list []uint32) []byte
	Decompress(data []byte) ([]uint32, error)
}

// For returns the Codec implementation for k.
func For(k Kind) Codec {
	switch k {
	case VarByte:
		return VarByteCodec{}
	case Simple9:
		return Simple9Codec{}
	case Simple16:
		return Simple16Codec{}
	case PForDelta:
		return PForDeltaCodec{}
	case Rice:
		return RiceCodec{}
	default:
		return VarByteCodec{}
	}
}

// DGapEncode pre-applies successive-difference encoding: the first
// element is kept as-is, subsequent elements are replaced by the
// difference from their predecessor. list must be strictly ascending
// with list[0] >= 1 (doc-id invariant, spec §3).
func DGapEncode(list []uint32) []uint32 {
	if len(list) == 0 {
		return nil
	}
	out := make([]uint32, len(list))
	out[0] = list[0]
	for i := 1; i < len(list); i++ {
		out[i] = list[i] - list[i-1]
	}
	return out
}

// DGapDecode reverses DGapEncode by running a cumulative sum.
func DGapDecode(gaps []uint32) []uint32 {
	if len(gaps) == 0 {
		return nil
	}
	out := make([]uint32, len(gaps))
	var sum uint32
	for i, g := range gaps {
		if i == 0 {
			sum = g
		} else {
			sum += g
		}
		out[i] = sum
	}
	return out
}

// CompressDGap d-gaps list then compresses it with c.
func CompressDGap(c Codec, list []uint32) []byte {
	return c.Compress(DGapEncode(list))
}

// DecompressDGap decompresses data with c then reverses the d-gap
// transform.
func DecompressDGap(c Codec, data []byte) ([]uint32, error) {
	gaps, err := c.Decompress(data)
	if err != nil {
		return nil, err
	}
	return DGapDecode(gaps), nil
}
