package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// benchConfig is the full workload description. It can be loaded from a
// TOML file (keys are the Go field names) and overridden by flags.
type benchConfig struct {
	Capacity        int
	Shards          int // 0 runs the unsharded core cache on one goroutine
	Workers         int
	Keys            int
	Ops             int
	Reads           int // percentage [0..100]
	Workload        string
	ZipfS           float64
	Seed            int64
	RebalanceFactor int
	Metrics         string `toml:",omitempty"`
}

func defaultConfig() benchConfig {
	return benchConfig{
		Capacity: 100_000,
		Workers:  4,
		Keys:     1_000_000,
		Ops:      2_000_000,
		Reads:    80,
		Workload: workloadZipf,
		ZipfS:    1.1,
		Seed:     1,
	}
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

func loadConfig(file string, cfg *benchConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig layers defaults, the optional config file and explicit flags.
func makeConfig(ctx *cli.Context) (benchConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(capacityFlag.Name) {
		cfg.Capacity = ctx.Int(capacityFlag.Name)
	}
	if ctx.IsSet(shardsFlag.Name) {
		cfg.Shards = ctx.Int(shardsFlag.Name)
	}
	if ctx.IsSet(workersFlag.Name) {
		cfg.Workers = ctx.Int(workersFlag.Name)
	}
	if ctx.IsSet(keysFlag.Name) {
		cfg.Keys = ctx.Int(keysFlag.Name)
	}
	if ctx.IsSet(opsFlag.Name) {
		cfg.Ops = ctx.Int(opsFlag.Name)
	}
	if ctx.IsSet(readsFlag.Name) {
		cfg.Reads = ctx.Int(readsFlag.Name)
	}
	if ctx.IsSet(workloadFlag.Name) {
		cfg.Workload = ctx.String(workloadFlag.Name)
	}
	if ctx.IsSet(zipfFlag.Name) {
		cfg.ZipfS = ctx.Float64(zipfFlag.Name)
	}
	if ctx.IsSet(seedFlag.Name) {
		cfg.Seed = ctx.Int64(seedFlag.Name)
	}
	if ctx.IsSet(rebalanceFlag.Name) {
		cfg.RebalanceFactor = ctx.Int(rebalanceFlag.Name)
	}
	if ctx.IsSet(metricsFlag.Name) {
		cfg.Metrics = ctx.String(metricsFlag.Name)
	}
	return cfg, cfg.validate()
}

func (cfg benchConfig) validate() error {
	switch {
	case cfg.Capacity <= 0:
		return fmt.Errorf("capacity must be > 0, got %d", cfg.Capacity)
	case cfg.Keys <= 0:
		return fmt.Errorf("keys must be > 0, got %d", cfg.Keys)
	case cfg.Reads < 0 || cfg.Reads > 100:
		return fmt.Errorf("reads must be within [0..100], got %d", cfg.Reads)
	case cfg.Workload == workloadZipf && cfg.ZipfS <= 1:
		return fmt.Errorf("zipf s must be > 1, got %v", cfg.ZipfS)
	}
	switch cfg.Workload {
	case workloadZipf, workloadUniform, workloadSorted:
		return nil
	default:
		return fmt.Errorf("unknown workload %q (use %s, %s or %s)",
			cfg.Workload, workloadZipf, workloadUniform, workloadSorted)
	}
}
