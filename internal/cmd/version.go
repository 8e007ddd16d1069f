package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version := info.Version
			if version == "" {
				version = "dev"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gdbmi %s\n", version)
			if info.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", info.Commit)
			}
			if info.Date != "" {
				fmt.Fprintf(out, "Built: %s\n", info.Date)
			}
			return nil
		},
	}
}
