// Package sharded puts a lock in front of cache.Cache. Entries are spread
// over independent shards by hash, each shard being a splay cache guarded
// by its own mutex, so the front end is safe for concurrent use while the
// core cache stays single-threaded.
//
// Recency and capacity are per shard: eviction picks the LRU entry of the
// shard that receives the insert, not of the whole cache.
package sharded

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/IvanBrykalov/splaycache/cache"
	"github.com/IvanBrykalov/splaycache/internal/util"
	"github.com/IvanBrykalov/splaycache/policy"
)

var (
	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("sharded: no Loader provided")
	// ErrNoHash is returned by New when Hash is nil and the value type has
	// no default hash.
	ErrNoHash = errors.New("sharded: value type needs a Hash function")
)

// Options configures the sharded cache. Zero values are safe except for
// Capacity and Compare:
//   - Shards <= 0      => auto (≈ 2*GOMAXPROCS), rounded up to a power of two
//   - nil Hash         => FNV-1a of the whole value (basic types and Stringers)
//   - nil Key          => fmt.Sprint of the whole value
//   - nil NewAllocator => heap allocation
//
// The remaining fields are passed to every shard's cache.Options.
type Options[V any] struct {
	// Capacity is the total entry limit, split evenly (ceil) across shards.
	Capacity int

	// Shards defines the number of shards.
	Shards int

	// Compare orders values inside a shard.
	Compare func(a, b V) int

	// Hash picks the shard of a value. Values that compare equal must hash
	// equally; for key/value structs hash only the key.
	Hash func(v V) uint64

	// Key renders the lookup key of a value. GetOrLoad coalesces loads of
	// queries with equal Hash and Key, so for key/value structs render only
	// the key.
	Key func(v V) string

	// NewAllocator builds one allocator per shard (allocators are used
	// under the shard lock only).
	NewAllocator func() cache.Allocator[V]

	Dup             func(v V) (V, error)
	Delete          func(v V) bool
	Debug           cache.DebugFunc
	Metrics         cache.Metrics // shared by all shards; must be goroutine-safe; Size gets the total
	Policy          policy.Policy[V]
	RebalanceFactor int

	// Loader fetches a value on a miss. Used by GetOrLoad.
	Loader func(ctx context.Context, query V) (V, error)
}

// shard is one independently locked splay cache.
type shard[V any] struct {
	mu sync.Mutex
	c  *cache.Cache[V]

	// Loader invocations routed to this shard; bumped outside mu.
	_     util.CacheLinePad
	loads util.PaddedAtomicUint64
}

// Cache is a sharded, mutex-guarded splay cache.
// All methods are safe for concurrent use by multiple goroutines.
type Cache[V any] struct {
	shards []*shard[V]
	hash   func(V) uint64
	key    func(V) string
	loader func(ctx context.Context, query V) (V, error)
	closed atomic.Bool

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group
}

// New constructs a sharded cache. It fails with the same errors as
// cache.New when Capacity or Compare is missing.
func New[V any](opt Options[V]) (*Cache[V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: must be >0 but %d was requested", cache.ErrInvalidCapacity, opt.Capacity)
	}
	sh := opt.Shards
	if sh <= 0 {
		sh = util.ReasonableShardCount()
	} else {
		sh = int(util.NextPow2(uint64(sh)))
	}
	hash := opt.Hash
	if hash == nil {
		if t := reflect.TypeFor[V](); t.Kind() != reflect.Interface && !util.Hashable(*new(V)) {
			return nil, fmt.Errorf("%w: %v", ErrNoHash, t)
		}
		hash = func(v V) uint64 { return util.Fnv64a[any](v) }
	}
	key := opt.Key
	if key == nil {
		key = func(v V) string { return fmt.Sprint(v) }
	}
	var total *atomic.Int64
	if opt.Metrics != nil {
		total = new(atomic.Int64)
	}

	perShardCap := (opt.Capacity + sh - 1) / sh
	shards := make([]*shard[V], sh)
	for i := range shards {
		co := cache.Options[V]{
			Capacity:        perShardCap,
			Compare:         opt.Compare,
			Dup:             opt.Dup,
			Delete:          opt.Delete,
			Debug:           opt.Debug,
			Policy:          opt.Policy,
			RebalanceFactor: opt.RebalanceFactor,
		}
		if opt.NewAllocator != nil {
			co.Allocator = opt.NewAllocator()
		}
		if opt.Metrics != nil {
			co.Metrics = &shardMetrics{Metrics: opt.Metrics, total: total}
		}
		c, err := cache.New(co)
		if err != nil {
			return nil, err
		}
		shards[i] = &shard[V]{c: c}
	}
	return &Cache[V]{
		shards: shards,
		hash:   hash,
		key:    key,
		loader: opt.Loader,
	}, nil
}

// Insert stores v in its shard; see cache.Cache.Insert.
func (c *Cache[V]) Insert(v V) (V, error) {
	if c.closed.Load() {
		var zero V
		return zero, cache.ErrClosed
	}
	s := c.getShard(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Insert(v)
}

// Find looks up query in its shard; a hit promotes the entry to MRU.
func (c *Cache[V]) Find(query V) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	s := c.getShard(query)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Find(query)
}

// Remove deletes query if present and returns true on success.
func (c *Cache[V]) Remove(query V) bool {
	if c.closed.Load() {
		return false
	}
	s := c.getShard(query)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Remove(query)
}

// Len returns the total number of live entries across all shards.
func (c *Cache[V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += s.c.Len()
		s.mu.Unlock()
	}
	return total
}

// Loads returns how many times the Loader has run.
func (c *Cache[V]) Loads() uint64 {
	var total uint64
	for _, s := range c.shards {
		total += s.loads.Load()
	}
	return total
}

// Balance rebalances every shard in parallel. It stops scheduling shards
// once ctx is done and returns the first error.
func (c *Cache[V]) Balance(ctx context.Context) error {
	if c.closed.Load() {
		return cache.ErrClosed
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range c.shards {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.c.Balance()
		})
	}
	return g.Wait()
}

// Check validates every shard and joins the failures.
func (c *Cache[V]) Check() error {
	if c.closed.Load() {
		return cache.ErrClosed
	}
	var errs []error
	for i, s := range c.shards {
		s.mu.Lock()
		if err := s.c.Check(); err != nil {
			errs = append(errs, fmt.Errorf("shard %d: %w", i, err))
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// GetOrLoad returns the entry for query; on a miss it loads it via
// Options.Loader, coalescing concurrent loads for the same query
// (singleflight), and inserts the result.
//
// Cancelling ctx unblocks this caller only; a load already running on
// behalf of another caller keeps going with that caller's ctx.
func (c *Cache[V]) GetOrLoad(ctx context.Context, query V) (V, error) {
	var zero V
	// fast path
	if v, ok := c.Find(query); ok {
		return v, nil
	}
	if c.loader == nil {
		return zero, ErrNoLoader
	}
	if c.closed.Load() {
		return zero, cache.ErrClosed
	}

	h := c.hash(query)
	s := c.shards[util.ShardIndex(h, len(c.shards))]
	key := strconv.FormatUint(h, 16) + "/" + c.key(query)
	ch := c.sf.DoChan(key, func() (any, error) {
		// double-check after flight join; the miss is already counted
		if v, ok := c.peek(s, query); ok {
			return v, nil
		}
		s.loads.Add(1)
		v, err := c.loader(ctx, query)
		if err != nil {
			return zero, err
		}
		return c.Insert(v)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close closes every shard. Future operations are ignored or fail with
// cache.ErrClosed.
func (c *Cache[V]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	for _, s := range c.shards {
		s.mu.Lock()
		_ = s.c.Close()
		s.mu.Unlock()
	}
	return nil
}

func (c *Cache[V]) peek(s *shard[V], query V) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Peek(query)
}

// getShard picks a shard by hashing the value.
func (c *Cache[V]) getShard(v V) *shard[V] {
	return c.shards[util.ShardIndex(c.hash(v), len(c.shards))]
}

// shardMetrics forwards to the shared Metrics but turns each shard's size
// report into the total over all shards. local is guarded by the shard lock.
type shardMetrics struct {
	cache.Metrics
	total *atomic.Int64
	local int
}

func (m *shardMetrics) Size(entries int) {
	d := entries - m.local
	m.local = entries
	m.Metrics.Size(int(m.total.Add(int64(d))))
}
