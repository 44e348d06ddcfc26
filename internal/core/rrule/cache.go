package rrule

import (
	"container/list"
	"sync"
)

// Cache is a thread-safe LRU of parsed rules keyed by their serialized form.
// RecurrenceRule is immutable, so cached values are shared without copying.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key  string
	rule RecurrenceRule
}

// NewCache creates a cache holding at most capacity rules.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Parse returns the cached rule for s, parsing and caching it on a miss.
// Parse errors are not cached.
func (c *Cache) Parse(s string) (RecurrenceRule, error) {
	if r, ok := c.get(s); ok {
		return r, nil
	}

	r, err := ParseRRule(s)
	if err != nil {
		return RecurrenceRule{}, err
	}
	c.put(s, r)
	return r, nil
}

// Len returns the number of cached rules.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) get(key string) (RecurrenceRule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return RecurrenceRule{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).rule, true
}

func (c *Cache) put(key string, r RecurrenceRule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).rule = r
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.entries, oldest.Value.(*cacheEntry).key)
			c.order.Remove(oldest)
		}
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, rule: r})
}
