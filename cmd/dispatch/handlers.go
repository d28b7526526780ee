package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jharlow/dispatch/internal/config"
	"github.com/jharlow/dispatch/internal/registry"
)

var handlersRegistry string

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List registered handlers and their domains",
	Long: `List every handler in the registry with its domain tags, keywords,
and declared dependencies. The registry is validated on load: unknown
dependency tags and dependency cycles are rejected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if handlersRegistry != "" {
			cfg.Registry.Path = handlersRegistry
		}

		reg, err := registry.Load(cfg.Registry.Path)
		if err != nil {
			return fmt.Errorf("load handler registry: %w", err)
		}

		for _, d := range reg.Descriptors() {
			fmt.Printf("%s\n", d.Name)
			fmt.Printf("  domains:  %s\n", strings.Join(d.Domains, ", "))
			fmt.Printf("  keywords: %s\n", strings.Join(d.Keywords, ", "))
			if len(d.DependsOn) > 0 {
				fmt.Printf("  after:    %s\n", strings.Join(d.DependsOn, ", "))
			}
			if d.Command != "" {
				fmt.Printf("  command:  %s\n", d.Command)
			}
		}
		return nil
	},
}

func init() {
	handlersCmd.Flags().StringVar(&handlersRegistry, "registry", "", "Handlers YAML file (overrides config)")
}
