// Package main provides the entry point for the snapdiff service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ternarybob/snapdiff/cmd/snapdiff/commands"
	"github.com/ternarybob/snapdiff/internal/common"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "snapdiff",
		Short: "Snapdiff - visual regression service for component gallery builds",
		Long: `Snapdiff captures every story of two component gallery builds,
diffs the screenshots and serves the results over HTTP.

Commands:
  serve       Run the HTTP service
  save-doc    Write the OpenAPI document to a file
  migrate:up  Apply the relational schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation runs the service.
			return commands.RunServe(cmd, args)
		},
	}

	commands.RegisterServeFlags(rootCmd)
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewSaveDocCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "snapdiff %s\n", common.GetFullVersion())
		},
	}
}
