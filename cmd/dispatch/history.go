package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jharlow/dispatch/internal/config"
	"github.com/jharlow/dispatch/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [request-id]",
	Short: "Show recent request executions",
	Long: `Show the most recent routed requests and their outcomes.
With a request ID, shows that request's per-task terminal statuses.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		path := cfg.History.Path
		if path == "" {
			path = state.DefaultDBPath()
		}

		db, err := state.Open(path)
		if err != nil {
			return fmt.Errorf("open history db: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate history db: %w", err)
		}

		if len(args) == 1 {
			return showRequestTasks(db, args[0])
		}
		return showRecent(db)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of requests to show")
}

func showRecent(db *state.DB) error {
	records, err := db.RecentRequests(historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No requests recorded.")
		return nil
	}

	for _, r := range records {
		status := color.GreenString("ok")
		if !r.Succeeded {
			status = color.RedString("failed")
		}
		fmt.Printf("%s  %s  %-6s  %s  %q\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), status, r.Duration, r.Text)
	}
	return nil
}

func showRequestTasks(db *state.DB, requestID string) error {
	tasks, err := db.TasksForRequest(requestID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Printf("No tasks recorded for request %s.\n", requestID)
		return nil
	}

	for _, t := range tasks {
		fmt.Printf("%-12s %-10s", t.Handler, string(t.Status))
		if t.Error != "" {
			fmt.Printf("  %s", t.Error)
		}
		fmt.Println()
	}
	return nil
}
