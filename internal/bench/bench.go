// Package bench provides benchmarking primitives for the bpetrain bench command.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/go-bpe-trainer/internal/trainer"
)

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the stage timings of a single training run.
type RunResult struct {
	Index   int
	Cold    bool // true for the first run (cold-start)
	Timings trainer.Timings
	Merges  int
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// The slice must be non-empty.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// Totals returns the total duration of every run.
func Totals(runs []RunResult) []time.Duration {
	out := make([]time.Duration, len(runs))
	for i, r := range runs {
		out[i] = r.Timings.Total
	}
	return out
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Run trains warmup+runs times with opts and returns the timed runs
// (warmup runs are discarded). The first returned run is marked cold when
// warmup is zero.
func Run(ctx context.Context, opts trainer.Options, runs, warmup int) ([]RunResult, error) {
	if runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", runs)
	}

	for i := 0; i < warmup; i++ {
		if _, err := trainer.Run(ctx, opts); err != nil {
			return nil, fmt.Errorf("warmup run %d: %w", i+1, err)
		}
	}

	results := make([]RunResult, 0, runs)
	for i := 0; i < runs; i++ {
		res, err := trainer.Run(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		results = append(results, RunResult{
			Index:   i,
			Cold:    i == 0 && warmup == 0,
			Timings: res.Timings,
			Merges:  len(res.Merges),
		})
	}
	return results, nil
}

// ---------------------------------------------------------------------------
// Throughput helpers
// ---------------------------------------------------------------------------

// MergesPerSecond returns merges / merge-stage duration.
// Returns 0 if the duration is zero to avoid division by zero.
func MergesPerSecond(merges int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(merges) / d.Seconds()
}

// CheckMeanThreshold returns an error if mean > threshold.
// A threshold of 0 disables the gate.
func CheckMeanThreshold(mean, threshold time.Duration) error {
	if threshold <= 0 {
		return nil
	}
	if mean > threshold {
		return fmt.Errorf("mean run time %v exceeds threshold %v", mean, threshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %9s  %9s  %10s  %9s  %10s  %10s\n",
		"Run", "Cold", "Read", "Init", "Merge", "Assign", "Total(ms)", "Merges/s")
	fmt.Fprintln(sb, strings.Repeat("-", 84))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %9.2f  %9.2f  %10.2f  %9.2f  %10.2f  %10.1f\n",
			r.Index+1,
			cold,
			ms(r.Timings.Read),
			ms(r.Timings.Initialize),
			ms(r.Timings.Merge),
			ms(r.Timings.Assign),
			ms(r.Timings.Total),
			MergesPerSecond(r.Merges, r.Timings.Merge),
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 84))
	pad := strings.Repeat(" ", 62)
	fmt.Fprintf(sb, "%s  %10.2f  (min)\n", pad, ms(stats.Min))
	fmt.Fprintf(sb, "%s  %10.2f  (mean)\n", pad, ms(stats.Mean))
	fmt.Fprintf(sb, "%s  %10.2f  (max)\n", pad, ms(stats.Max))

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index        int     `json:"index"`
	Cold         bool    `json:"cold"`
	ReadMS       float64 `json:"read_ms"`
	InitializeMS float64 `json:"initialize_ms"`
	MergeMS      float64 `json:"merge_ms"`
	AssignMS     float64 `json:"assign_ms"`
	TotalMS      float64 `json:"total_ms"`
	Merges       int     `json:"merges"`
	MergesPerSec float64 `json:"merges_per_sec"`
}

type jsonStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:  ms(stats.Min),
			MeanMS: ms(stats.Mean),
			MaxMS:  ms(stats.Max),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:        r.Index,
			Cold:         r.Cold,
			ReadMS:       ms(r.Timings.Read),
			InitializeMS: ms(r.Timings.Initialize),
			MergeMS:      ms(r.Timings.Merge),
			AssignMS:     ms(r.Timings.Assign),
			TotalMS:      ms(r.Timings.Total),
			Merges:       r.Merges,
			MergesPerSec: MergesPerSecond(r.Merges, r.Timings.Merge),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
