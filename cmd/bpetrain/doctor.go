package main

import (
	"fmt"

	"github.com/example/go-bpe-trainer/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the corpus, output directory and training settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			result := doctor.Run(doctor.ConfigFrom(cfg), cmd.OutOrStdout())

			if result.Failed() {
				return fmt.Errorf("doctor checks failed: %w", result.Err())
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "doctor checks passed")

			return nil
		},
	}

	return cmd
}
