// Package export renders issue collections as CSV, Markdown or a
// self-contained HTML report. Every renderer is a pure function of its
// issues and the supplied clock, so identical inputs give identical bytes.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
)

type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

var Formats = []Format{FormatCSV, FormatMarkdown, FormatHTML}

var ErrUnknownFormat = errors.New("unknown export format")

const reportTitle = "QieWallet Bug Report"

// ParseFormat accepts the format names and a few common aliases.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func Render(f Format, issues []issue.Issue, now time.Time) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(issues, now), nil
	case FormatMarkdown:
		return Markdown(issues, now), nil
	case FormatHTML:
		return HTML(issues, now)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Filename is the download name for a report generated at now.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("qiewallet-issue-report-%s.%s", now.UTC().Format("2006-01-02"), f)
}

func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

func generatedAt(now time.Time) string {
	return now.UTC().Format("2006-01-02 15:04:05 UTC")
}
