package cache

import (
	"cmp"
	"math/rand"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
)

const benchCap = 1 << 14

func benchCache(b *testing.B, factor int) *Cache[int] {
	c, err := New(Options[int]{
		Capacity:        benchCap,
		Compare:         cmp.Compare[int],
		RebalanceFactor: factor,
	})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = c.Close() })
	return c
}

// benchmarkMix exercises a read/write mix over a warm cache with a
// skewed key distribution, where splaying keeps hot keys near the root.
func benchmarkMix(b *testing.B, readsPct int) {
	c := benchCache(b, 0)
	for i := 0; i < benchCap/2; i++ {
		_, _ = c.Insert(i)
	}
	r := rand.New(rand.NewSource(1))
	zipf := rand.NewZipf(r, 1.1, 1, benchCap*2)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := int(zipf.Uint64())
		if r.Intn(100) < readsPct {
			c.Find(k)
		} else {
			_, _ = c.Insert(k)
		}
	}
}

func BenchmarkCache_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkCache_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// benchmarkSorted is the adversarial case: ascending inserts followed by an
// ascending scan. With a RebalanceFactor the first deep splay triggers Balance.
func benchmarkSorted(b *testing.B, factor int) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := benchCache(b, factor)
		for k := 0; k < benchCap; k++ {
			_, _ = c.Insert(k)
		}
		for k := 0; k < benchCap; k++ {
			c.Find(k)
		}
	}
}

func BenchmarkCache_Sorted(b *testing.B)           { benchmarkSorted(b, 0) }
func BenchmarkCache_SortedRebalanced(b *testing.B) { benchmarkSorted(b, 4) }

// Baseline: the same mix against a hash-indexed LRU.
func BenchmarkHashLRU_90r10w(b *testing.B) {
	c, err := lru.New[int, int](benchCap)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < benchCap/2; i++ {
		c.Add(i, i)
	}
	r := rand.New(rand.NewSource(1))
	zipf := rand.NewZipf(r, 1.1, 1, benchCap*2)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := int(zipf.Uint64())
		if r.Intn(100) < 90 {
			c.Get(k)
		} else {
			c.Add(k, k)
		}
	}
}
