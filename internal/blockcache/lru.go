package blockcache

import (
	"container/list"

	"github.com/nyxsearch/engine/internal/block"
)

type lruEntry struct {
	key     uint64
	blockID int
	decoded *block.Decoded
}

// LRU evicts the least-recently-used entry when full.
type LRU struct {
	capacity int
	ll       *list.List // front = most recently used
	items    map[uint64]*list.Element
}

// NewLRU returns an LRU cache holding at most capacity blocks.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element, capacity),
	}
}

func (c *LRU) Get(blockID int) (*block.Decoded, bool) {
	k := key(blockID)
	el, ok := c.items[k]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*lruEntry).decoded, true
}

func (c *LRU) Put(blockID int, decoded *block.Decoded) {
	k := key(blockID)
	if el, ok := c.items[k]; ok {
		el.Value.(*lruEntry).decoded = decoded
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		back := c.ll.Back()
		if back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*lruEntry).key)
		}
	}
	el := c.ll.PushFront(&lruEntry{key: k, blockID: blockID, decoded: decoded})
	c.items[k] = el
}

func (c *LRU) Len() int { return c.ll.Len() }
