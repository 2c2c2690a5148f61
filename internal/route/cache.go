package route

import "sync"

// The engine keeps two small performance caches: major-waypoint positions
// keyed by waypoint fingerprint, and per-path curvature keyed by a hash of
// the raw samples. Both hold only the most recent entry; a miss is always a
// plain recompute, so they carry no correctness weight and never grow.

type majorsEntry struct {
	mu  sync.Mutex
	key uint64
	val []MajorPosition
	ok  bool
}

var majorsCache majorsEntry

func (c *majorsEntry) get(key uint64) ([]MajorPosition, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ok && c.key == key {
		return c.val, true
	}
	return nil, false
}

func (c *majorsEntry) put(key uint64, val []MajorPosition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.val = val
	c.ok = true
}

type curvatureEntry struct {
	mu       sync.Mutex
	key      uint64
	strategy string
	val      []float64
	ok       bool
}

var curvatureCache curvatureEntry

func (c *curvatureEntry) get(key uint64, strategy string) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ok && c.key == key && c.strategy == strategy {
		return c.val, true
	}
	return nil, false
}

func (c *curvatureEntry) put(key uint64, strategy string, val []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.strategy = strategy
	c.val = val
	c.ok = true
}
