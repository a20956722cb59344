// SPDX-License-Identifier: MIT

package fit

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Cache memoizes fit results keyed by model, estimator options and the exact
// bit patterns of the data. Safe for concurrent use; entries are deep-copied
// on the way in and out.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]*Result
	hits    int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*Result)}
}

// Len is the number of stored results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Hits counts lookups served from the cache.
func (c *Cache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[uint64]*Result)
	c.hits = 0
	c.mu.Unlock()
}

func (c *Cache) load(key uint64) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.hits++

	return r.clone(), true
}

func (c *Cache) store(key uint64, r *Result) {
	c.mu.Lock()
	c.entries[key] = r.clone()
	c.mu.Unlock()
}

// cacheKey hashes everything that can change a fit's outcome. Options that
// only affect FitEverything (sorting, exclusion, workers) are left out.
func cacheKey(model string, o *options, obs *Observations) uint64 {
	h := xxhash.New()
	var buf [8]byte
	u64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	f64 := func(v float64) { u64(math.Float64bits(v)) }

	_, _ = h.WriteString(model)
	u64(uint64(o.method))
	u64(uint64(o.lsVariant))
	f64(o.ci)
	u64(uint64(o.ciType))
	for _, s := range o.strategies {
		_, _ = h.WriteString(string(s))
		_, _ = h.Write([]byte{0})
	}
	u64(uint64(len(o.initial)))
	for _, v := range o.initial {
		f64(v)
	}
	u64(uint64(o.maxIter))
	u64(uint64(o.maxEval))
	u64(uint64(o.restarts))
	u64(o.seed)

	u64(uint64(len(obs.failures)))
	for _, v := range obs.failures {
		f64(v)
	}
	u64(uint64(len(obs.censored)))
	for _, v := range obs.censored {
		f64(v)
	}

	return h.Sum64()
}
