package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IvanBrykalov/splaycache/policy"
)

// EvictReason explains why an entry left the cache.
type EvictReason int

const (
	// EvictCapacity: the LRU node was recycled to admit a new key.
	EvictCapacity EvictReason = iota
	// EvictRemove: removed explicitly via Remove.
	EvictRemove
	// EvictClear: dropped by Clear or Close.
	EvictClear
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
	// Rebalance reports the outcome of every Balance pass.
	Rebalance(ok bool)
}

// DebugFunc receives diagnostics for every recoverable internal failure.
// fn and line identify the reporting function inside the cache.
type DebugFunc func(fn string, line int, format string, args ...any)

// SlogDebug adapts a slog.Logger to a DebugFunc. Messages are emitted at
// debug level with "func" and "line" attributes. A nil logger means
// slog.Default().
func SlogDebug(l *slog.Logger) DebugFunc {
	if l == nil {
		l = slog.Default()
	}
	return func(fn string, line int, format string, args ...any) {
		l.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...),
			"func", fn, "line", line)
	}
}

// Options configures the cache. Zero values are safe except for Capacity
// and Compare; defaults are applied in New():
//   - nil Allocator => HeapAllocator
//   - nil Debug     => SlogDebug(slog.Default())
//   - nil Metrics   => NoopMetrics
//   - nil Policy    => LRU
type Options[V any] struct {
	// Capacity is the maximum number of live entries (> 0).
	Capacity int

	// Compare orders values; it must be a strict total order for the
	// lifetime of the cache. cmp.Compare is a valid choice for ordered types.
	Compare func(a, b V) int

	// Allocator supplies and reclaims node storage.
	Allocator Allocator[V]

	// Dup copies a value on its way into the cache. Nil stores the value
	// as given and leaves its lifetime to the caller.
	Dup func(v V) (V, error)

	// Delete releases a value that is replaced, evicted, removed or cleared.
	// The result is informational only.
	Delete func(v V) bool

	// Debug receives diagnostics on failure paths.
	Debug DebugFunc

	// Metrics receives Hit/Miss/Evict/Size/Rebalance signals.
	Metrics Metrics

	// Policy orders the age list; nil => LRU.
	Policy policy.Policy[V]

	// RebalanceFactor enables automatic Balance: when a single splay
	// descends more than RebalanceFactor*ceil(log2(size+1)) levels the
	// tree is rebalanced before the operation returns. 0 disables it.
	RebalanceFactor int
}
