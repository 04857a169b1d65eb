// Package blockcache caches decoded index blocks so repeated queries
// against hot terms avoid re-seeking and re-parsing the same page
// (spec §4.12). Three interchangeable eviction policies are provided
// behind one Cache interface: LRU, LFU (the default, per spec), and
// Landlord.
package blockcache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/nyxsearch/engine/internal/block"
)

// DefaultCapacity is the default number of decoded blocks held (spec
// §4.12: "default LFU with ≈1000 entries").
const DefaultCapacity = 1000

// Cache is a fixed-capacity store of decoded blocks keyed by block id.
// Implementations are not safe for concurrent use: the query
// processor owns one cache instance single-threaded (spec §5).
type Cache interface {
	Get(blockID int) (*block.Decoded, bool)
	Put(blockID int, decoded *block.Decoded)
	Len() int
}

// key hashes a block id with xxhash, an unseeded hash, so a block id
// maps to the same key in every run. Eviction order does not depend on
// map iteration: LRU and LFU evict by their own recency/insertion
// order and Landlord breaks credit ties by the lower block id, so the
// same access sequence evicts the same blocks across runs — useful
// when comparing cache policies on the same trace.
func key(blockID int) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(blockID))
	return xxhash.Sum64(buf[:])
}
