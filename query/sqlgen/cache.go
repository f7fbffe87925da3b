package sqlgen

import "sync"

// CacheStats counts statement cache lookups.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// HitRate is the share of lookups served from the cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// StatementCache is a size-bounded LRU of compiled statements. It is safe
// for concurrent use.
type StatementCache struct {
	mu      sync.Mutex
	data    map[string]*cacheNode
	maxSize int
	head    *cacheNode
	tail    *cacheNode
	stats   CacheStats
}

type cacheNode struct {
	key   string
	value *Statement
	prev  *cacheNode
	next  *cacheNode
}

// NewStatementCache creates a cache holding at most maxSize statements.
func NewStatementCache(maxSize int) *StatementCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &StatementCache{
		data:    make(map[string]*cacheNode),
		maxSize: maxSize,
		stats:   CacheStats{MaxSize: maxSize},
	}
}

// Get returns a copy of the cached statement for key.
func (c *StatementCache) Get(key string) (*Statement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.data[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.moveToFront(node)
	c.stats.Hits++
	return node.value.clone(), true
}

// Put stores st under key, evicting the least recently used entry when
// the cache is full.
func (c *StatementCache) Put(key string, st *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.data[key]; ok {
		node.value = st.clone()
		c.moveToFront(node)
		return
	}
	if len(c.data) >= c.maxSize {
		c.evictLRU()
	}
	node := &cacheNode{key: key, value: st.clone()}
	c.data[key] = node
	c.addToFront(node)
}

// Clear drops every entry; the counters are kept.
func (c *StatementCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*cacheNode)
	c.head, c.tail = nil, nil
}

func (c *StatementCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.data)
	return s
}

func (c *StatementCache) moveToFront(node *cacheNode) {
	if node == c.head {
		return
	}
	c.unlink(node)
	c.addToFront(node)
}

func (c *StatementCache) addToFront(node *cacheNode) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *StatementCache) unlink(node *cacheNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.prev, node.next = nil, nil
}

func (c *StatementCache) evictLRU() {
	if c.tail == nil {
		return
	}
	victim := c.tail
	c.unlink(victim)
	delete(c.data, victim.key)
	c.stats.Evictions++
}

func (s *Statement) clone() *Statement {
	return &Statement{SQL: s.SQL, Args: append([]any(nil), s.Args...)}
}
