package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jharlow/dispatch/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusStyles = map[models.TaskStatus]lipgloss.Style{
		models.TaskStatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		models.TaskStatusRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		models.TaskStatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.TaskStatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.TaskStatusSkipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

// renderPlan renders an execution plan as an ordered listing.
func renderPlan(plan *models.ExecutionPlan, plain bool) string {
	var b strings.Builder

	title := fmt.Sprintf("Execution plan (%d tasks)", len(plan.Tasks))
	if plain {
		b.WriteString(title + "\n")
	} else {
		b.WriteString(headerStyle.Render(title) + "\n")
	}

	for i, task := range plan.Tasks {
		deps := ""
		if len(task.DependsOn) > 0 {
			names := make([]string, 0, len(task.DependsOn))
			for _, depID := range task.DependsOn {
				if dep := plan.Task(depID); dep != nil {
					names = append(names, dep.Handler)
				}
			}
			deps = " (after " + strings.Join(names, ", ") + ")"
		}

		head := fmt.Sprintf("%d. %s ", i+1, task.Handler)
		tail := "[" + task.Domain + "]" + deps
		if plain {
			b.WriteString(head + tail + "\n")
		} else {
			b.WriteString(head + dimStyle.Render(tail) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderResult renders the terminal statuses of a finished request.
func renderResult(result *models.ExecutionResult, plain bool) string {
	var b strings.Builder

	completed, failed, skipped := result.Counts()
	summary := fmt.Sprintf("Request %s: %d completed, %d failed, %d skipped (%s)",
		result.RequestID, completed, failed, skipped, result.Duration)

	if plain {
		b.WriteString(summary + "\n")
	} else {
		b.WriteString(headerStyle.Render(summary) + "\n")
	}

	for _, task := range result.Tasks {
		status := string(task.Status)
		if !plain {
			if style, ok := statusStyles[task.Status]; ok {
				status = style.Render(status)
			}
		}
		b.WriteString(fmt.Sprintf("  %-12s %s", task.Handler, status))
		if task.Error != "" {
			b.WriteString("  " + task.Error)
		}
		if task.Output != "" {
			b.WriteString("\n" + indent(task.Output, "    "))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// indent prefixes every line of s with prefix.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
