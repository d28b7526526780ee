package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jharlow/dispatch/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long: `Display the effective configuration after merging defaults, the user
config (~/.config/dispatch/config.yaml), the project config
(.dispatch.yaml found by upward search), and DISPATCH_* environment
variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("registry.path: %s\n", cfg.Registry.Path)
		fmt.Printf("coordinator.workers: %d\n", cfg.Coordinator.Workers)
		fmt.Printf("coordinator.timeout: %s\n", cfg.Coordinator.Timeout)
		fmt.Printf("coordinator.log_path: %s\n", displayOrNone(cfg.Coordinator.LogPath))
		fmt.Printf("history.path: %s\n", displayOrNone(cfg.History.Path))
		fmt.Printf("history.disabled: %t\n", cfg.History.Disabled)
		fmt.Printf("output.plain: %t\n", cfg.Output.Plain)

		fmt.Println()
		fmt.Printf("user config: %s\n", config.GetUserConfigPath())
		if project := config.GetProjectConfigPath(); project != "" {
			fmt.Printf("project config: %s\n", project)
		}
	},
}

func displayOrNone(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
