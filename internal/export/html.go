package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
)

//go:embed report.html.tmpl
var reportSource string

var reportTemplate = template.Must(template.New("report").Parse(reportSource))

type htmlReport struct {
	Title     string
	Generated string
	Stats     issue.Stats
	Issues    []htmlIssue
}

type htmlIssue struct {
	issue.Issue
	Steps []string
	Shots []htmlShot
}

type htmlShot struct {
	Src  any
	Name string
}

func HTML(issues []issue.Issue, now time.Time) ([]byte, error) {
	report := htmlReport{
		Title:     reportTitle,
		Generated: generatedAt(now),
		Stats:     issue.Summarize(issues),
		Issues:    make([]htmlIssue, 0, len(issues)),
	}

	for _, it := range issues {
		shots := make([]htmlShot, 0, len(it.Screenshots))
		for _, sh := range it.Screenshots {
			shots = append(shots, htmlShot{Src: imageSrc(sh.Data), Name: sh.Name})
		}
		report.Issues = append(report.Issues, htmlIssue{Issue: it, Steps: it.NonEmptySteps(), Shots: shots})
	}

	var b bytes.Buffer
	if err := reportTemplate.Execute(&b, report); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return b.Bytes(), nil
}

// imageSrc trusts only base64 image data URIs. Anything else is left for
// html/template to sanitize.
func imageSrc(data string) any {
	if issue.IsImageDataURI(data) {
		return template.URL(data)
	}
	return data
}
