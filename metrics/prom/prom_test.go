package prom

import (
	"cmp"
	"testing"

	"github.com/IvanBrykalov/splaycache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_CountsCacheTraffic(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "splay", "test", prometheus.Labels{"app": "unit"})

	c, err := cache.New(cache.Options[int]{
		Capacity: 2,
		Compare:  cmp.Compare[int],
		Metrics:  m,
	})
	require.NoError(t, err)

	for _, v := range []int{1, 2, 3} {
		_, err := c.Insert(v)
		require.NoError(t, err)
	}
	c.Find(3) // hit
	c.Find(1) // miss (evicted)
	require.NoError(t, c.Balance())
	require.True(t, c.Remove(2))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("capacity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("remove")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rebalances.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.size))

	require.NoError(t, c.Close())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("clear")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.size))
}

func TestAdapter_RegistersOnce(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg, "splay", "a", nil)
	assert.Panics(t, func() { New(reg, "splay", "a", nil) },
		"registering the same metric names twice must panic")

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	// Only non-vector metrics are exported before any label is used.
	assert.Equal(t, 3, n)
}
