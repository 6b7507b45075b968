package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/splaycache/cache"
	"github.com/IvanBrykalov/splaycache/metrics/prom"
	"github.com/IvanBrykalov/splaycache/sharded"
)

const (
	workloadZipf    = "zipf"
	workloadUniform = "uniform"
	workloadSorted  = "sorted"
)

type result struct {
	ops, reads, hits uint64
	elapsed          time.Duration
	entries          int
	depthBefore      int // core mode only
	depthAfter       int
}

func bench(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}

	var metrics cache.Metrics
	if cfg.Metrics != "" {
		metrics = prom.New(nil, "splaycache", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			slog.Info("Serving metrics", "addr", cfg.Metrics)
			if err := http.ListenAndServe(cfg.Metrics, nil); err != nil {
				slog.Error("Metrics server stopped", "err", err)
			}
		}()
	}

	slog.Info("Starting workload", "workload", cfg.Workload, "cap", cfg.Capacity,
		"shards", cfg.Shards, "keys", cfg.Keys, "ops", cfg.Ops, "reads", cfg.Reads,
		"rebalance", cfg.RebalanceFactor, "seed", cfg.Seed)

	var res result
	if cfg.Shards == 0 {
		res, err = runCore(cfg, metrics)
	} else {
		res, err = runSharded(ctx.Context, cfg, metrics)
	}
	if err != nil {
		return err
	}

	hitRate := 0.0
	if res.reads > 0 {
		hitRate = float64(res.hits) / float64(res.reads) * 100
	}
	fmt.Printf("workload=%s cap=%d shards=%d keys=%d dur=%v seed=%d\n",
		cfg.Workload, cfg.Capacity, cfg.Shards, cfg.Keys, res.elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  hits=%d  hit-rate=%.2f%%\n",
		res.ops, float64(res.ops)/res.elapsed.Seconds(), res.reads, res.hits, hitRate)
	fmt.Printf("Len()=%d", res.entries)
	if cfg.Shards == 0 {
		fmt.Printf("  depth=%d  depth after Balance=%d", res.depthBefore, res.depthAfter)
	}
	fmt.Println()
	return nil
}

// newKeyGen returns the key sequence of one worker.
func newKeyGen(cfg benchConfig, r *rand.Rand, worker int) func() int {
	switch cfg.Workload {
	case workloadSorted:
		stride := max(cfg.Workers, 1)
		next := worker
		return func() int {
			k := next % cfg.Keys
			next += stride
			return k
		}
	case workloadUniform:
		return func() int { return r.Intn(cfg.Keys) }
	default:
		z := rand.NewZipf(r, cfg.ZipfS, 1, uint64(cfg.Keys-1))
		return func() int { return int(z.Uint64()) }
	}
}

// runCore drives the unsharded cache from a single goroutine and measures
// tree depth before and after an explicit Balance.
func runCore(cfg benchConfig, metrics cache.Metrics) (result, error) {
	c, err := cache.New(cache.Options[int]{
		Capacity:        cfg.Capacity,
		Compare:         cmp.Compare[int],
		Debug:           cache.SlogDebug(slog.Default()),
		Metrics:         metrics,
		RebalanceFactor: cfg.RebalanceFactor,
	})
	if err != nil {
		return result{}, err
	}
	defer func() { _ = c.Close() }()

	r := rand.New(rand.NewSource(cfg.Seed))
	next := newKeyGen(cfg, r, 0)

	var res result
	start := time.Now()
	for i := 0; i < cfg.Ops; i++ {
		k := next()
		if r.Intn(100) < cfg.Reads {
			res.reads++
			if _, ok := c.Find(k); ok {
				res.hits++
			}
		} else if _, err := c.Insert(k); err != nil {
			return res, err
		}
	}
	res.elapsed = time.Since(start)
	res.ops = uint64(cfg.Ops)
	res.entries = c.Len()

	res.depthBefore = c.Depth()
	if err := c.Balance(); err != nil {
		return res, err
	}
	res.depthAfter = c.Depth()
	slog.Debug("Balanced core cache", "before", res.depthBefore, "after", res.depthAfter)
	return res, c.Check()
}

// runSharded splits the operations over worker goroutines.
func runSharded(ctx context.Context, cfg benchConfig, metrics cache.Metrics) (result, error) {
	c, err := sharded.New(sharded.Options[int]{
		Capacity:        cfg.Capacity,
		Shards:          cfg.Shards,
		Compare:         cmp.Compare[int],
		Debug:           cache.SlogDebug(slog.Default()),
		Metrics:         metrics,
		RebalanceFactor: cfg.RebalanceFactor,
	})
	if err != nil {
		return result{}, err
	}
	defer func() { _ = c.Close() }()

	workers := max(cfg.Workers, 1)
	perWorker := cfg.Ops / workers
	var reads, hits atomic.Uint64

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			// rand.Rand is not goroutine-safe: one per worker.
			r := rand.New(rand.NewSource(cfg.Seed + int64(w)*9973))
			next := newKeyGen(cfg, r, w)
			for i := 0; i < perWorker; i++ {
				if i%1024 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				k := next()
				if r.Intn(100) < cfg.Reads {
					reads.Add(1)
					if _, ok := c.Find(k); ok {
						hits.Add(1)
					}
				} else if _, err := c.Insert(k); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result{}, err
	}

	res := result{
		ops:     uint64(perWorker * workers),
		reads:   reads.Load(),
		hits:    hits.Load(),
		elapsed: time.Since(start),
		entries: c.Len(),
	}
	if err := c.Balance(context.Background()); err != nil {
		return res, err
	}
	return res, c.Check()
}
