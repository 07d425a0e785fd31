package main

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/numset/slots"
)

type Report struct {
	// Configuration
	Duration     time.Duration
	Seed         int64
	MaxID        int
	Prefill      int
	CompactEvery int

	// Results
	Rounds        int64
	TotalTime     time.Duration
	RoundTime     Stats
	Counters      Counters
	Store         slots.Stats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Slot Store Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Seed:** {{.Seed}}
- **Max Put Id:** {{.MaxID}}
- **Prefilled Elements:** {{.Prefill}}
- **Compact Every:** {{if .CompactEvery}}{{.CompactEvery}} rounds{{else}}never{{end}}

## Operations
- Put: {{.Counters.Puts}}
- Remove: {{.Counters.Removes}}
- Add: {{.Counters.Adds}}
- EnsureElement: {{.Counters.Ensures}}
- RemoveValue: {{.Counters.RemoveValues}}
- Full iterations: {{.Counters.Iterations}}
- Command flushes: {{.Counters.Flushes}}
- Compactions: {{.Counters.Compactions}}
- Clears: {{.Counters.Clears}}
- Concurrent mutations detected: {{.Counters.Detections}}
- **Mismatches:** {{.Counters.Mismatches}}

## Performance Results
- **Total Rounds:** {{.Rounds}}
- **Total Test Time:** {{.TotalTime}}
- **Round Time:**
  - **Avg:** {{.RoundTime.Avg}}
  - **Min:** {{.RoundTime.Min}}
  - **Max:** {{.RoundTime.Max}}

## Final Store
- Elements: {{.Store.Len}}
- Addressable slots: {{.Store.Cap}} in {{.Store.Blocks}} blocks
- Last id: {{.Store.LastID}}
- Holes below last id: {{.Store.Holes}}
- Generation: {{.Store.Generation}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
