package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/pst/script"
	"github.com/spf13/cobra"
)

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [script-file]",
		Short: "Runs a YAML operation script and reports unmet expectations.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("error reading script: %w", err)
			}
			s, err := script.Parse(source)
			if err != nil {
				return err
			}
			report, err := s.Run()
			if err != nil {
				return err
			}
			out, err := report.YAML()
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(out)
			if !report.OK() {
				return fmt.Errorf("%d expectations not met", len(report.Mismatches))
			}
			return nil
		},
	}
	return cmd
}
