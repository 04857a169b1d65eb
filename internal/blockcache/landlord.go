package blockcache

import "github.com/nyxsearch/engine/internal/block"

type landlordEntry struct {
	blockID int
	decoded *block.Decoded
	credit  float64
}

// Landlord implements the Cao-Irani landlord caching policy: every
// entry holds a credit; a hit restores it to vtime+cost; a miss under
// capacity pressure evicts the minimum-credit entry and advances
// vtime to that minimum, amortizing the cost of "renting" every
// resident entry by the same amount before any single eviction. All
// blocks carry the same uniform cost here (one decode), which reduces
// Landlord to something between LRU and LFU depending on access
// skew — useful when a future version wants per-block costs (e.g.
// larger blocks costing more to re-decode) without changing callers.
type Landlord struct {
	capacity int
	cost     float64
	vtime    float64
	items    map[uint64]*landlordEntry
}

// NewLandlord returns a Landlord cache holding at most capacity blocks.
func NewLandlord(capacity int) *Landlord {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Landlord{
		capacity: capacity,
		cost:     1,
		items:    make(map[uint64]*landlordEntry, capacity),
	}
}

func (c *Landlord) Get(blockID int) (*block.Decoded, bool) {
	k := key(blockID)
	e, ok := c.items[k]
	if !ok {
		return nil, false
	}
	e.credit = c.vtime + c.cost
	return e.decoded, true
}

func (c *Landlord) Put(blockID int, decoded *block.Decoded) {
	k := key(blockID)
	if e, ok := c.items[k]; ok {
		e.decoded = decoded
		e.credit = c.vtime + c.cost
		return
	}
	if len(c.items) >= c.capacity {
		c.evictOne()
	}
	c.items[k] = &landlordEntry{blockID: blockID, decoded: decoded, credit: c.vtime + c.cost}
}

func (c *Landlord) evictOne() {
	var victim uint64
	minCredit := -1.0
	found := false
	for k, e := range c.items {
		if !found || e.credit < minCredit || (e.credit == minCredit && e.blockID < c.items[victim].blockID) {
			minCredit = e.credit
			victim = k
			found = true
		}
	}
	if !found {
		return
	}
	c.vtime = minCredit
	delete(c.items, victim)
}

func (c *Landlord) Len() int { return len(c.items) }
