package main

import (
	"fmt"

	"github.com/example/go-bpe-trainer/internal/bpe"
	"github.com/example/go-bpe-trainer/internal/store"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Verify and summarize a trained artifact directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if top < 0 {
				return fmt.Errorf("--top must be >= 0")
			}

			dir := cfg.Paths.OutputDir
			if len(args) == 1 {
				dir = args[0]
			}

			a, m, err := store.Load(dir)
			if err != nil {
				return fmt.Errorf("load %s: %w", dir, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dir:        %s\n", dir)
			fmt.Fprintf(out, "format:     %s\n", m.Format)
			fmt.Fprintf(out, "generated:  %s\n", m.Generated)
			fmt.Fprintf(out, "word forms: %d (%d words)\n", len(a.Vocab), a.Vocab.Total())
			fmt.Fprintf(out, "merges:     %d\n", len(a.Merges))
			fmt.Fprintf(out, "tokens:     %d\n", a.Tokens.Len())

			if top == 0 {
				return nil
			}

			fmt.Fprintln(out, "\nfirst merges:")
			for i, p := range a.Merges[:min(top, len(a.Merges))] {
				fmt.Fprintf(out, "  %4d  %s -> %s\n", i+1, p, p.Merged())
			}

			fmt.Fprintln(out, "\nfirst learned tokens:")
			tokens := a.Tokens.Tokens()[bpe.FirstLearnedID:]
			for i, tok := range tokens[:min(top, len(tokens))] {
				fmt.Fprintf(out, "  %4d  %s\n", bpe.FirstLearnedID+i, tok)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Number of merges and tokens to list (0 = summary only)")

	return cmd
}
