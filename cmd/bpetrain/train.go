package main

import (
	"fmt"
	"log/slog"

	"github.com/example/go-bpe-trainer/internal/store"
	"github.com/example/go-bpe-trainer/internal/trainer"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Learn merges from the corpus and write the artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			opts := trainer.OptionsFromConfig(cfg)
			opts.Logger = slog.Default()

			res, err := trainer.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			m, err := store.Save(cfg.Paths.OutputDir, cfg.Output.Format, res.Artifacts)
			if err != nil {
				return fmt.Errorf("save artifacts: %w", err)
			}
			slog.Info("artifacts written", "dir", cfg.Paths.OutputDir, "format", m.Format)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "corpus:     %s (%d lines, %d words, %d word forms)\n",
				cfg.Paths.CorpusPath, res.Lines, res.Words, res.WordForms)
			fmt.Fprintf(out, "merges:     %d of %d\n", len(res.Merges), cfg.Training.Merges)
			if res.Stopped {
				fmt.Fprintln(out, "            stopped early")
			}
			fmt.Fprintf(out, "tokens:     %d\n", res.Tokens.Len())
			fmt.Fprintf(out, "output:     %s (%s)\n", cfg.Paths.OutputDir, m.Format)
			fmt.Fprintf(out, "duration:   %v\n", res.Timings.Total)

			return nil
		},
	}
}
