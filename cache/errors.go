package cache

import "fmt"

type constError string

func (errStr constError) Error() string { return string(errStr) }

const (
	// ErrInvalidCapacity is returned from [New] for a non-positive capacity.
	ErrInvalidCapacity = constError("cache: invalid capacity")
	// ErrNoComparator is returned from [New] when Options.Compare is nil.
	ErrNoComparator = constError("cache: no comparator provided")
	// ErrNilCache is returned by methods called on a nil *Cache.
	ErrNilCache = constError("cache: nil cache")
	// ErrClosed is returned by methods called after Close.
	ErrClosed = constError("cache: closed")
	// ErrAlloc wraps allocator failures during Insert.
	ErrAlloc = constError("cache: node allocation failed")
	// ErrDuplicate wraps Options.Dup failures during Insert.
	ErrDuplicate = constError("cache: value duplication failed")
	// ErrBrokenChain is returned by Balance when the vine is inconsistent.
	ErrBrokenChain = constError("cache: broken rebalance chain")
	// ErrCorrupt is returned by Check when an invariant does not hold.
	ErrCorrupt = constError("cache: structure corrupt")
)

func invalidCapacityError(capacity int) error {
	return fmt.Errorf("%w: must be >0 but %d was requested", ErrInvalidCapacity, capacity)
}
