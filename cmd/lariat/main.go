// Package main provides the entry point for the lariat CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/lariat/cmd/lariat/commands"
	"github.com/Sumatoshi-tech/lariat/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lariat",
		Short: "Lariat String Interning - deduplicated vocabulary store",
		Long: `Lariat interns strings into an append-only arena and hands back
stable integer keys.

Commands:
  stats     Intern tokens from files and report interner statistics
  pack      Intern tokens from files and write a snapshot
  unpack    Restore a snapshot and dump its vocabulary
  bench     Run a synthetic interning workload`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file path (default .lariat.yaml)")

	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewPackCommand())
	rootCmd.AddCommand(commands.NewUnpackCommand())
	rootCmd.AddCommand(commands.NewBenchCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(os.Stdout, version.String())
		},
	}
}
