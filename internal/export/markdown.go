package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
)

func Markdown(issues []issue.Issue, now time.Time) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", reportTitle)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", generatedAt(now))
	fmt.Fprintf(&b, "**Total Issues:** %d\n\n", len(issues))
	b.WriteString("---\n\n")

	for _, it := range issues {
		fmt.Fprintf(&b, "## %s: %s\n\n", oneLine(it.ID), oneLine(it.Title))
		b.WriteString("| Field | Value |\n")
		b.WriteString("|-------|-------|\n")
		fmt.Fprintf(&b, "| **Status** | %s |\n", it.Status.Label())
		fmt.Fprintf(&b, "| **Severity** | %s |\n", it.Severity.Label())
		fmt.Fprintf(&b, "| **Type** | %s |\n", it.Type.Label())
		fmt.Fprintf(&b, "| **Screen** | %s |\n", cell(it.Screen))
		if it.ReportedBy != "" {
			fmt.Fprintf(&b, "| **Reported By** | %s |\n", cell(it.ReportedBy))
		}
		if it.AssignedTo != "" {
			fmt.Fprintf(&b, "| **Assigned To** | %s |\n", cell(it.AssignedTo))
		}
		fmt.Fprintf(&b, "| **Created** | %s |\n\n", cell(it.CreatedAt))

		if it.Description != "" {
			fmt.Fprintf(&b, "### Description\n%s\n\n", it.Description)
		}

		if steps := it.NonEmptySteps(); len(steps) > 0 {
			b.WriteString("### Steps to Reproduce\n")
			for i, step := range steps {
				fmt.Fprintf(&b, "%d. %s\n", i+1, oneLine(step))
			}
			b.WriteString("\n")
		}

		if it.ExpectedBehavior != "" {
			fmt.Fprintf(&b, "### Expected Behavior\n%s\n\n", it.ExpectedBehavior)
		}
		if it.ActualBehavior != "" {
			fmt.Fprintf(&b, "### Actual Behavior\n%s\n\n", it.ActualBehavior)
		}

		if n := len(it.Screenshots); n > 0 {
			fmt.Fprintf(&b, "### Screenshots (%d)\n", n)
			b.WriteString("> Note: Screenshots are embedded in the HTML export. For Markdown, use the HTML export to view images.\n\n")
		}

		if it.Notes != "" {
			fmt.Fprintf(&b, "### Notes\n%s\n\n", it.Notes)
		}

		if it.Environment != "" || it.Device != "" || it.OSVersion != "" || it.AppVersion != "" {
			b.WriteString("### Environment\n")
			if it.Environment != "" {
				fmt.Fprintf(&b, "- **Environment:** %s\n", oneLine(it.Environment))
			}
			if it.Device != "" {
				fmt.Fprintf(&b, "- **Device:** %s\n", oneLine(it.Device))
			}
			if it.OSVersion != "" {
				fmt.Fprintf(&b, "- **OS Version:** %s\n", oneLine(it.OSVersion))
			}
			if it.AppVersion != "" {
				fmt.Fprintf(&b, "- **App Version:** %s\n", oneLine(it.AppVersion))
			}
			b.WriteString("\n")
		}

		b.WriteString("---\n\n")
	}

	return b.Bytes()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// oneLine keeps a value on the line it is written to.
func oneLine(s string) string {
	return lineBreaks.Replace(s)
}

// cell makes a value safe inside a table row.
func cell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}
