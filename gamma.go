package ebisu

import (
	"math"
	"math/bits"
	"sync"
	"sync/atomic"
)

// DefaultCacheEntries bounds the log-gamma cache built by NewEngine when
// EngineConfig.Cache is nil and CacheEntries is zero.
const DefaultCacheEntries = 1 << 16

const defaultCacheShards = 16

// GammaFunc supplies the natural log of the Gamma function for x > 0.
type GammaFunc interface {
	LogGamma(x float64) float64
}

// StdGamma evaluates log Gamma with the standard library.
type StdGamma struct{}

// LogGamma returns log|Gamma(x)|.
func (StdGamma) LogGamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// CacheStats is a point-in-time view of a LogGammaCache.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
}

// CacheOption configures a LogGammaCache.
type CacheOption func(*LogGammaCache)

// WithMaxEntries bounds the cache. maxEntries <= 0 means unbounded.
func WithMaxEntries(maxEntries int) CacheOption {
	return func(c *LogGammaCache) {
		c.maxEntries = maxEntries
	}
}

// WithShards sets the number of lock shards, rounded up to a power of two.
func WithShards(n int) CacheOption {
	return func(c *LogGammaCache) {
		if n > 0 {
			c.shardCount = n
		}
	}
}

// WithProvider replaces the underlying special-function provider.
func WithProvider(g GammaFunc) CacheOption {
	return func(c *LogGammaCache) {
		if g != nil {
			c.provider = g
		}
	}
}

type cacheShard struct {
	mu sync.RWMutex
	m  map[uint64]float64
}

// LogGammaCache memoizes a GammaFunc. It is safe for concurrent use: keys are
// spread over independently locked shards and a miss is computed outside any
// lock, so a slow miss never blocks lookups of other keys.
type LogGammaCache struct {
	provider    GammaFunc
	shards      []*cacheShard
	mask        uint64
	shardCount  int
	maxEntries  int
	maxPerShard int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// Compile-time interface check.
var _ GammaFunc = (*LogGammaCache)(nil)

// NewLogGammaCache creates an empty cache. Without options it is unbounded,
// has 16 shards and wraps StdGamma.
func NewLogGammaCache(opts ...CacheOption) *LogGammaCache {
	c := &LogGammaCache{
		provider:   StdGamma{},
		shardCount: defaultCacheShards,
	}
	for _, opt := range opts {
		opt(c)
	}

	n := 1 << bits.Len(uint(c.shardCount-1))
	c.shards = make([]*cacheShard, n)
	for i := range c.shards {
		c.shards[i] = &cacheShard{m: make(map[uint64]float64)}
	}
	c.mask = uint64(n - 1)
	if c.maxEntries > 0 {
		c.maxPerShard = (c.maxEntries + n - 1) / n
	}
	return c
}

// LogGamma returns the cached value for x, computing and storing it on a miss.
func (c *LogGammaCache) LogGamma(x float64) float64 {
	key := math.Float64bits(x)
	s := c.shard(key)

	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return v
	}

	c.misses.Add(1)
	v = c.provider.LogGamma(x)

	s.mu.Lock()
	if _, exists := s.m[key]; !exists && c.maxPerShard > 0 && len(s.m) >= c.maxPerShard {
		// Map iteration order is unspecified; drop whichever key comes first.
		for k := range s.m {
			delete(s.m, k)
			c.evictions.Add(1)
			break
		}
	}
	s.m[key] = v
	s.mu.Unlock()
	return v
}

// Provider returns the wrapped special-function provider.
func (c *LogGammaCache) Provider() GammaFunc {
	return c.provider
}

// Len returns the number of cached entries.
func (c *LogGammaCache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// Clear drops every entry. Counters are kept.
func (c *LogGammaCache) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		clear(s.m)
		s.mu.Unlock()
	}
}

// Stats returns the current counters and size.
func (c *LogGammaCache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.Len(),
	}
}

// shard picks a shard by Fibonacci hashing the key bits.
func (c *LogGammaCache) shard(key uint64) *cacheShard {
	return c.shards[(key*0x9E3779B97F4A7C15)>>32&c.mask]
}
