// Command bench runs a synthetic workload against the splay cache and
// optionally exposes Prometheus metrics.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	capacityFlag = &cli.IntFlag{
		Name:  "cap",
		Usage: "cache capacity (entries)",
	}
	shardsFlag = &cli.IntFlag{
		Name:  "shards",
		Usage: "number of shards (0 = unsharded core cache, single goroutine)",
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "worker goroutines (sharded mode only)",
	}
	keysFlag = &cli.IntFlag{
		Name:  "keys",
		Usage: "keyspace size",
	}
	opsFlag = &cli.IntFlag{
		Name:  "ops",
		Usage: "total operations",
	}
	readsFlag = &cli.IntFlag{
		Name:  "reads",
		Usage: "read percentage [0..100]",
	}
	workloadFlag = &cli.StringFlag{
		Name:  "workload",
		Usage: "key distribution: zipf | uniform | sorted",
	}
	zipfFlag = &cli.Float64Flag{
		Name:  "zipf.s",
		Usage: "Zipf s > 1 (skew)",
	}
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "random seed",
	}
	rebalanceFlag = &cli.IntFlag{
		Name:  "rebalance",
		Usage: "automatic rebalance factor (0 = off)",
	}
	metricsFlag = &cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "serve Prometheus metrics at addr (e.g. :8080); empty = disabled",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug",
		Value: 3,
	}
)

var app = &cli.App{
	Name:  "bench",
	Usage: "splay cache workload driver",
	Flags: []cli.Flag{
		configFlag,
		capacityFlag,
		shardsFlag,
		workersFlag,
		keysFlag,
		opsFlag,
		readsFlag,
		workloadFlag,
		zipfFlag,
		seedFlag,
		rebalanceFlag,
		metricsFlag,
		verbosityFlag,
	},
	Before: func(ctx *cli.Context) error {
		slog.SetDefault(newLogger(ctx.Int(verbosityFlag.Name)))
		return nil
	},
	Action: bench,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger maps the numeric verbosity onto slog levels.
func newLogger(verbosity int) *slog.Logger {
	var lvl slog.Level
	switch {
	case verbosity <= 0:
		return slog.New(slog.DiscardHandler)
	case verbosity == 1:
		lvl = slog.LevelError
	case verbosity == 2:
		lvl = slog.LevelWarn
	case verbosity == 3:
		lvl = slog.LevelInfo
	default:
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
