package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"github.com/example/go-bpe-trainer/internal/bench"
	"github.com/example/go-bpe-trainer/internal/trainer"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newBenchCmd() *cobra.Command {
	var (
		runs       int
		warmup     int
		report     string
		threshold  time.Duration
		cpuProfile string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark training time per pipeline stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if warmup < 0 {
				return fmt.Errorf("--warmup must be >= 0")
			}
			if report != "table" && report != "json" {
				return fmt.Errorf("--report must be 'table' or 'json'")
			}

			opts := trainer.OptionsFromConfig(cfg)
			opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

			if cpuProfile != "" {
				stopProfile, profErr := startCPUProfile(cpuProfile)
				if profErr != nil {
					return profErr
				}
				defer multierr.AppendInvoke(&err, multierr.Invoke(stopProfile))
			}

			results, err := bench.Run(cmd.Context(), opts, runs, warmup)
			if err != nil {
				return err
			}
			stats := bench.ComputeStats(bench.Totals(results))

			out := cmd.OutOrStdout()
			switch report {
			case "json":
				bench.FormatJSON(results, stats, out)
			default:
				bench.FormatTable(results, stats, out)
			}

			return bench.CheckMeanThreshold(stats.Mean, threshold)
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 5, "Number of timed training runs")
	cmd.Flags().IntVar(&warmup, "warmup", 0, "Untimed runs before measuring")
	cmd.Flags().StringVar(&report, "report", "table", "Report format: table|json")
	cmd.Flags().DurationVar(&threshold, "threshold", 0, "Exit non-zero if the mean run time exceeds this value (0 = disabled)")
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write a CPU profile with per-stage labels to this file")

	return cmd
}

// startCPUProfile starts profiling into path and returns the stop function.
func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, multierr.Append(fmt.Errorf("start cpu profile: %w", err), f.Close())
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}
