package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Intent router and task-decomposition engine",
	Long: `Dispatch routes free-form requests to registered specialist handlers.

A request is classified into domain tags using the keyword tables
declared on each handler, reduced to one handler per domain, ordered by
declared dependencies, and executed with bounded concurrency. When a
handler fails, everything depending on it is skipped rather than run.

Handlers are external commands declared in a registry file
(handlers.yaml by default); dispatch owns none of their behavior.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(handlersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
