// Package util contains internal helpers (hashing, sharding, padding, pow2).
//
//revive:disable:var-naming
package util

import (
	"fmt"
	"math"
)

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

// Fnv64a hashes common value types with 64-bit FNV-1a. Integers of every
// width hash as their 64-bit two's-complement pattern, so int(7) and
// int64(7) land in the same shard. Unsupported types panic: a silently
// poor hash would break the "equal values hash equally" contract that
// sharding depends on.
func Fnv64a[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return fnvString(fnvOffset64, v)
	case []byte:
		return fnvBytes(fnvOffset64, v)
	case [16]byte:
		return fnvBytes(fnvOffset64, v[:])
	case [32]byte:
		return fnvBytes(fnvOffset64, v[:])
	case bool:
		if v {
			return fnvUint64(fnvOffset64, 1)
		}
		return fnvUint64(fnvOffset64, 0)
	case int:
		return fnvUint64(fnvOffset64, uint64(v))
	case int8:
		return fnvUint64(fnvOffset64, uint64(v))
	case int16:
		return fnvUint64(fnvOffset64, uint64(v))
	case int32:
		return fnvUint64(fnvOffset64, uint64(v))
	case int64:
		return fnvUint64(fnvOffset64, uint64(v))
	case uint:
		return fnvUint64(fnvOffset64, uint64(v))
	case uint8:
		return fnvUint64(fnvOffset64, uint64(v))
	case uint16:
		return fnvUint64(fnvOffset64, uint64(v))
	case uint32:
		return fnvUint64(fnvOffset64, uint64(v))
	case uint64:
		return fnvUint64(fnvOffset64, v)
	case uintptr:
		return fnvUint64(fnvOffset64, uint64(v))
	case float64:
		return fnvFloat(fnvOffset64, v)
	case float32:
		return fnvFloat(fnvOffset64, float64(v))
	case fmt.Stringer:
		return fnvString(fnvOffset64, v.String())
	default:
		panic(fmt.Sprintf("util.Fnv64a: unsupported type %T; supply a Hash function", k))
	}
}

// Hashable reports whether Fnv64a accepts values of k's dynamic type.
func Hashable(k any) bool {
	switch k.(type) {
	case string, []byte, [16]byte, [32]byte, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, fmt.Stringer:
		return true
	}
	return false
}

// fnvFloat hashes f so that values equal under cmp.Compare collide:
// -0 folds into +0 and every NaN into one pattern.
func fnvFloat(h uint64, f float64) uint64 {
	switch {
	case f == 0:
		f = 0
	case math.IsNaN(f):
		f = math.NaN()
	}
	return fnvUint64(h, math.Float64bits(f))
}

func fnvString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

func fnvBytes(h uint64, b []byte) uint64 {
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

// fnvUint64 folds the 8 little-endian bytes of u into h without allocating.
func fnvUint64(h, u uint64) uint64 {
	for i := 0; i < 8; i++ {
		h ^= u & 0xff
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
