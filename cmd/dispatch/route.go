package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jharlow/dispatch/internal/classify"
	"github.com/jharlow/dispatch/internal/config"
	"github.com/jharlow/dispatch/internal/coordinator"
	"github.com/jharlow/dispatch/internal/exec"
	"github.com/jharlow/dispatch/internal/handler"
	"github.com/jharlow/dispatch/internal/registry"
	"github.com/jharlow/dispatch/internal/router"
	"github.com/jharlow/dispatch/internal/state"
	"github.com/jharlow/dispatch/pkg/models"
)

var (
	routeHandler  string
	routeDryRun   bool
	routeWorkers  int
	routeTimeout  time.Duration
	routeRegistry string
	routePlain    bool
)

var routeCmd = &cobra.Command{
	Use:   "route <request text>",
	Short: "Classify a request and execute the resulting plan",
	Long: `Classify the request text into domain tags, select one handler per
matched domain, order the handlers by their declared dependencies, and
execute the plan.

If the text matches no domain, the request is reported as unroutable.
If a domain resolves to more than one equally-specific handler, the
candidates are listed so you can pick one with --handler.

Use --dry-run to print the plan without invoking any handler.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVar(&routeHandler, "handler", "", "Pre-select a handler by name, bypassing classification")
	routeCmd.Flags().BoolVar(&routeDryRun, "dry-run", false, "Print the execution plan without running handlers")
	routeCmd.Flags().IntVar(&routeWorkers, "workers", 0, "Concurrent task limit (overrides config)")
	routeCmd.Flags().DurationVar(&routeTimeout, "timeout", 0, "Request deadline, e.g. 30s (overrides config)")
	routeCmd.Flags().StringVar(&routeRegistry, "registry", "", "Handlers YAML file (overrides config)")
	routeCmd.Flags().BoolVar(&routePlain, "plain", false, "Disable colored output")
}

func runRoute(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRouteFlags(cfg)

	if cfg.Output.Plain {
		color.NoColor = true
	}

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		// Registry errors (unknown dependency tags, cycles) are startup
		// configuration errors, never request-time conditions.
		return fmt.Errorf("load handler registry: %w", err)
	}

	req := router.NewRequest(text, routeHandler)
	cls := classify.New(reg).Classify(req.Text)

	plan, err := router.New(reg).Route(req, cls)
	if err != nil {
		return reportRouteError(err)
	}

	if routeDryRun {
		fmt.Println(renderPlan(plan, cfg.Output.Plain))
		return nil
	}

	result := executePlan(cfg, reg, plan)
	fmt.Println(renderResult(result, cfg.Output.Plain))

	if !cfg.History.Disabled {
		if err := saveHistory(cfg, req, result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: record history: %v\n", err)
		}
	}

	if !result.Succeeded() {
		os.Exit(1)
	}
	return nil
}

// applyRouteFlags lets command-line flags override loaded config.
func applyRouteFlags(cfg *config.Config) {
	if routeWorkers > 0 {
		cfg.Coordinator.Workers = routeWorkers
	}
	if routeTimeout > 0 {
		cfg.Coordinator.Timeout = routeTimeout
	}
	if routeRegistry != "" {
		cfg.Registry.Path = routeRegistry
	}
	if routePlain {
		cfg.Output.Plain = true
	}
}

// reportRouteError translates routing errors into actionable messages.
// Routing errors are part of the result surface, not crashes: the command
// exits non-zero with an explanation.
func reportRouteError(err error) error {
	var ambiguity *router.AmbiguityError
	switch {
	case errors.Is(err, router.ErrUnroutable):
		fmt.Fprintln(os.Stderr, "No handler matched this request.")
		fmt.Fprintln(os.Stderr, "Run 'dispatch handlers' to see registered domains and keywords,")
		fmt.Fprintln(os.Stderr, "or pre-select a handler with --handler <name>.")
	case errors.As(err, &ambiguity):
		fmt.Fprintf(os.Stderr, "Domain %q matches multiple handlers with equal specificity:\n", ambiguity.Domain)
		for _, name := range ambiguity.Candidates {
			fmt.Fprintf(os.Stderr, "  - %s\n", name)
		}
		fmt.Fprintln(os.Stderr, "Disambiguate with --handler <name>.")
	}
	return err
}

// executePlan runs the coordinator while streaming progress to stdout.
func executePlan(cfg *config.Config, reg *registry.Registry, plan *models.ExecutionPlan) *models.ExecutionResult {
	handlers := handler.Bind(reg, exec.NewRunner(), "")

	logger, err := coordinator.NewDebugLogger(cfg.Coordinator.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: debug log disabled: %v\n", err)
		logger = coordinator.NopLogger()
	}
	defer logger.Close()

	coord := coordinator.New(handlers, coordinator.Options{
		Workers: cfg.Coordinator.Workers,
		Logger:  logger,
	})

	ctx := context.Background()
	if cfg.Coordinator.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Coordinator.Timeout)
		defer cancel()
	}

	resultCh := make(chan *models.ExecutionResult, 1)
	go func() {
		resultCh <- coord.Execute(ctx, plan)
	}()

	for ev := range coord.Events() {
		printEvent(ev)
	}

	return <-resultCh
}

// printEvent renders one coordinator event as a progress line.
func printEvent(ev coordinator.Event) {
	switch ev.Type {
	case coordinator.EventTaskStarted:
		fmt.Printf("%s %s\n", color.CyanString("▶ running"), ev.Handler)
	case coordinator.EventTaskCompleted:
		fmt.Printf("%s %s\n", color.GreenString("✓ completed"), ev.Handler)
	case coordinator.EventTaskFailed:
		msg := ev.Message
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		fmt.Printf("%s %s: %s\n", color.RedString("✗ failed"), ev.Handler, msg)
	case coordinator.EventTaskSkipped:
		fmt.Printf("%s %s (%s)\n", color.YellowString("- skipped"), ev.Handler, ev.Message)
	}
}

// saveHistory records the request outcome in the history database.
func saveHistory(cfg *config.Config, req *models.Request, result *models.ExecutionResult) error {
	path := cfg.History.Path
	if path == "" {
		path = state.DefaultDBPath()
	}

	db, err := state.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	return db.SaveResult(req, result)
}
