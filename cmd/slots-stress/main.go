package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/fulldump/goconfig"
	"github.com/plus3/numset/slots"
)

type Config struct {
	Duration     string `usage:"how long the test should run for (Go duration)"`
	MaxID        int    `usage:"highest id used by put operations"`
	Prefill      int    `usage:"number of elements added before the run"`
	Seed         int64  `usage:"random seed, 0 picks one from the clock"`
	CompactEvery int    `usage:"run a gapless compaction every N rounds, 0 disables"`
	Verbose      bool   `usage:"log every failed consistency check and compaction"`
}

func main() {
	c := Config{
		Duration:     "10s",
		MaxID:        4096,
		Prefill:      1000,
		CompactEvery: 1000,
	}
	goconfig.Read(&c)

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	duration, err := time.ParseDuration(c.Duration)
	if err != nil {
		logger.Error("invalid duration", "duration", c.Duration, "err", err)
		os.Exit(2)
	}
	if c.MaxID <= 0 {
		logger.Error("max id must be positive", "maxid", c.MaxID)
		os.Exit(2)
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}

	logger.Info("starting slot store stress test", "seed", c.Seed, "maxid", c.MaxID)

	store := slots.New[int]()
	runner := newRunner(store, c, logger)

	logger.Info("populating store", "elements", c.Prefill)
	runner.prefill(c.Prefill)

	report := &Report{
		Duration:     duration,
		Seed:         c.Seed,
		MaxID:        c.MaxID,
		Prefill:      c.Prefill,
		CompactEvery: c.CompactEvery,
		RoundTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running", "duration", duration)
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	startTime := time.Now()
	var rounds int64

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			roundStart := time.Now()
			runner.round()
			report.RoundTime.Samples = append(report.RoundTime.Samples, time.Since(roundStart))
			rounds++

			if c.CompactEvery > 0 && rounds%int64(c.CompactEvery) == 0 {
				runner.compact()
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.Rounds = rounds
	report.RoundTime.Finalize()
	report.Counters = runner.counters
	report.Store = runner.store.CollectStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info("run finished", "rounds", rounds, "mismatches", runner.counters.Mismatches)

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Error("failed to generate report", "err", err)
		os.Exit(1)
	}
	fmt.Println("--- End of Report ---")

	if runner.counters.Mismatches > 0 {
		os.Exit(1)
	}
}
