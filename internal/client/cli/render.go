package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/fatih/color"
)

var (
	errorColor = color.New(color.FgRed).SprintFunc()
	okColor    = color.New(color.FgGreen).SprintFunc()
	warnColor  = color.New(color.FgYellow).SprintFunc()
	headColor  = color.New(color.Bold).SprintFunc()
	dimColor   = color.New(color.Faint).SprintFunc()
)

var severityColors = map[issue.Severity]*color.Color{
	issue.SeverityCritical: color.New(color.FgRed, color.Bold),
	issue.SeverityHigh:     color.New(color.FgRed),
	issue.SeverityMedium:   color.New(color.FgYellow),
	issue.SeverityLow:      color.New(color.FgGreen),
}

var statusColors = map[issue.Status]*color.Color{
	issue.StatusOpen:       color.New(color.FgCyan),
	issue.StatusInProgress: color.New(color.FgBlue),
	issue.StatusResolved:   color.New(color.FgGreen),
	issue.StatusClosed:     color.New(color.Faint),
	issue.StatusWontFix:    color.New(color.Faint),
}

// padded pads the plain label before colouring it so columns line up with
// or without escape codes.
func padded(c *color.Color, label string, width int) string {
	s := fmt.Sprintf("%-*s", width, label)
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func severityText(s issue.Severity, width int) string {
	return padded(severityColors[s], s.Label(), width)
}

func statusText(s issue.Status, width int) string {
	return padded(statusColors[s], s.Label(), width)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// preview shows a current value inside a prompt on one short line.
func preview(s string) string {
	first, _, more := strings.Cut(s, "\n")
	if more {
		first += " …"
	}
	return truncate(first, 40)
}

func renderTable(w io.Writer, issues []issue.Issue) {
	idw := len("ID")
	for _, it := range issues {
		idw = max(idw, len(it.ID))
	}

	fmt.Fprintln(w, headColor(fmt.Sprintf("%-*s  %-11s  %-8s  %s", idw, "ID", "STATUS", "SEVERITY", "TITLE")))
	for _, it := range issues {
		shots := ""
		if n := len(it.Screenshots); n > 0 {
			shots = dimColor(fmt.Sprintf(" [%d img]", n))
		}
		fmt.Fprintf(w, "%-*s  %s  %s  %s%s\n",
			idw, it.ID,
			statusText(it.Status, 11),
			severityText(it.Severity, 8),
			truncate(it.Title, 60), shots)
	}
}

func renderDetail(w io.Writer, it issue.Issue) {
	fmt.Fprintf(w, "%s %s\n", headColor(it.ID+":"), headColor(it.Title))

	field := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(w, "  %-13s %s\n", name+":", value)
	}

	field("Type", it.Type.Label())
	fmt.Fprintf(w, "  %-13s %s\n", "Severity:", severityText(it.Severity, 0))
	fmt.Fprintf(w, "  %-13s %s\n", "Status:", statusText(it.Status, 0))
	field("Screen", it.Screen)
	field("Environment", it.Environment)
	field("Device", it.Device)
	field("OS Version", it.OSVersion)
	field("App Version", it.AppVersion)
	field("Reported By", it.ReportedBy)
	field("Assigned To", it.AssignedTo)
	field("Created", it.CreatedAt)
	field("Updated", it.UpdatedAt)

	if it.Description != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", headColor("Description"), it.Description)
	}
	if steps := it.NonEmptySteps(); len(steps) > 0 {
		fmt.Fprintf(w, "\n%s\n", headColor("Steps to Reproduce"))
		for i, s := range steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s)
		}
	}
	if it.ExpectedBehavior != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", headColor("Expected"), it.ExpectedBehavior)
	}
	if it.ActualBehavior != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", headColor("Actual"), it.ActualBehavior)
	}
	if len(it.Screenshots) > 0 {
		fmt.Fprintf(w, "\n%s\n", headColor("Screenshots"))
		for _, s := range it.Screenshots {
			fmt.Fprintf(w, "  %s (%s, %s)\n", s.Name, s.Type, humanSize(s.Size))
		}
	}
	if it.Notes != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", headColor("Notes"), it.Notes)
	}
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func sinceText(t, now time.Time) string {
	if t.IsZero() {
		return "never synced"
	}
	d := now.Sub(t).Round(time.Second)
	if d < time.Second {
		return "synced just now"
	}
	return fmt.Sprintf("synced %s ago", d)
}
