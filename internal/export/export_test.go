package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 7, 15, 9, 30, 0, 0, time.UTC)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func sample() []issue.Issue {
	return []issue.Issue{
		{
			ID:               "ISS-1",
			Title:            `He said "bug"`,
			Description:      "Swap fails, sometimes",
			Type:             issue.TypeBug,
			Severity:         issue.SeverityCritical,
			Status:           issue.StatusOpen,
			Screen:           "Swap Screen (Main)",
			StepsToReproduce: []string{"Open app", "", "Tap swap"},
			ExpectedBehavior: "Quote shown",
			ActualBehavior:   "Spinner forever",
			Screenshots: []issue.Screenshot{
				{ID: "ss-1", Name: "one.png", Data: pixel, Type: "image/png", Size: 70},
				{ID: "ss-2", Name: "two.png", Data: pixel, Type: "image/png", Size: 70},
			},
			Environment: "Production",
			Device:      "Pixel 8",
			ReportedBy:  "qa",
			CreatedAt:   "2024-07-14T10:00:00.000Z",
			UpdatedAt:   "2024-07-14T11:00:00.000Z",
		},
		{
			ID:          "ISS-2",
			Title:       "Typo",
			Type:        issue.TypeDocumentation,
			Severity:    issue.SeverityLow,
			Status:      issue.StatusResolved,
			Screen:      "Settings",
			Screenshots: []issue.Screenshot{},
			Environment: "Staging",
			Notes:       "line1\nline2",
			CreatedAt:   "2024-07-13T10:00:00.000Z",
			UpdatedAt:   "2024-07-13T10:00:00.000Z",
		},
	}
}

func TestCSV(t *testing.T) {
	out := string(CSV(sample(), now))
	lines := strings.SplitN(out, "\n", 2)

	assert.Equal(t, "ID,Title,Description,Screen,Severity,Status,Type,Steps to Reproduce,Expected Behavior,Actual Behavior,Screenshot Count,Screenshot Filenames,Environment,Device,OS Version,App Version,Reported By,Assigned To,Created At,Updated At,Notes", lines[0])

	assert.Contains(t, out, `"ISS-1","He said ""bug""","Swap fails, sometimes","Swap Screen (Main)","Critical","Open","Bug","Open app | Tap swap","Quote shown","Spinner forever",2,"one.png; two.png","Production","Pixel 8","","","qa","","2024-07-14T10:00:00.000Z","2024-07-14T11:00:00.000Z",""`)
	assert.Contains(t, out, `"ISS-2","Typo","","Settings","Low","Resolved","Documentation","","","",0,"","Staging"`)
	assert.Contains(t, out, "\"line1\nline2\"\n")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestCSV_Empty(t *testing.T) {
	out := string(CSV(nil, now))
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown(sample(), now))

	assert.True(t, strings.HasPrefix(out, "# QieWallet Bug Report\n\n**Generated:** 2024-07-15 09:30:00 UTC\n\n**Total Issues:** 2\n\n---\n\n"))
	assert.Contains(t, out, "## ISS-1: He said \"bug\"\n\n| Field | Value |\n|-------|-------|\n| **Status** | Open |\n| **Severity** | Critical |\n")
	assert.Contains(t, out, "### Steps to Reproduce\n1. Open app\n2. Tap swap\n\n")
	assert.Contains(t, out, "### Screenshots (2)\n> Note:")
	assert.Contains(t, out, "- **Device:** Pixel 8\n")
	assert.Contains(t, out, "### Notes\nline1\nline2\n\n")
	assert.NotContains(t, out, "### Screenshots (0)")

	i1 := strings.Index(out, "## ISS-1")
	i2 := strings.Index(out, "## ISS-2")
	assert.Less(t, i1, i2, "issues keep input order")
}

func TestMarkdown_TableCellsStayInTheirRow(t *testing.T) {
	it := issue.Issue{
		ID:               "ISS-P",
		Title:            "Swap\nfails | sometimes",
		Type:             issue.TypeBug,
		Severity:         issue.SeverityHigh,
		Status:           issue.StatusOpen,
		Screen:           "Home | Wallet",
		ReportedBy:       "qa\r\nteam",
		AssignedTo:       "dev|ops",
		StepsToReproduce: []string{"open\nwallet"},
		Device:           "Pixel\n8",
	}
	out := string(Markdown([]issue.Issue{it}, now))

	assert.Contains(t, out, "## ISS-P: Swap fails | sometimes\n\n")
	assert.Contains(t, out, "| **Screen** | Home \\| Wallet |\n")
	assert.Contains(t, out, "| **Reported By** | qa team |\n")
	assert.Contains(t, out, "| **Assigned To** | dev\\|ops |\n")
	assert.Contains(t, out, "1. open wallet\n")
	assert.Contains(t, out, "- **Device:** Pixel 8\n")

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "| ") {
			unescaped := strings.Count(line, "|") - strings.Count(line, `\|`)
			assert.Equal(t, 3, unescaped, line)
		}
	}
}

func TestHTML_ImagesPerScreenshot(t *testing.T) {
	for _, n := range []int{1, 3} {
		for _, k := range []int{0, 2} {
			t.Run(fmt.Sprintf("%d issues x %d screenshots", n, k), func(t *testing.T) {
				issues := make([]issue.Issue, 0, n)
				for i := 0; i < n; i++ {
					it := issue.Issue{ID: fmt.Sprintf("ISS-%d", i), Title: "t", Type: issue.TypeBug, Severity: issue.SeverityLow, Status: issue.StatusOpen}
					for j := 0; j < k; j++ {
						it.Screenshots = append(it.Screenshots, issue.Screenshot{ID: fmt.Sprintf("ss-%d-%d", i, j), Name: "s.png", Data: pixel})
					}
					issues = append(issues, it)
				}

				out, err := HTML(issues, now)
				require.NoError(t, err)
				assert.Equal(t, n*k, strings.Count(string(out), "<img "))
				if k > 0 {
					assert.Equal(t, n*k, strings.Count(string(out), `src="`+pixel+`"`), "data URI is kept verbatim")
				}
			})
		}
	}
}

func TestHTML_EscapesText(t *testing.T) {
	issues := []issue.Issue{{
		ID:               "ISS-X",
		Title:            `<script>alert("x")</script>`,
		Description:      "a & b",
		Notes:            "<b>bold</b>",
		StepsToReproduce: []string{"<img src=x onerror=1>"},
		Type:             issue.TypeBug,
		Severity:         issue.SeverityHigh,
		Status:           issue.StatusOpen,
		Screenshots:      []issue.Screenshot{{Name: `"><script>`, Data: "javascript:alert(1)"}},
	}}

	out, err := HTML(issues, now)
	require.NoError(t, err)
	s := string(out)

	assert.NotContains(t, s, "<script>")
	assert.Contains(t, s, "&lt;script&gt;")
	assert.Contains(t, s, "a &amp; b")
	assert.NotContains(t, s, "javascript:alert")
	assert.Equal(t, 1, strings.Count(s, "<img "), "only the screenshot img tag is real markup")
}

func TestHTML_Summary(t *testing.T) {
	out, err := HTML(sample(), now)
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, `<div class="stat-value">2</div><div class="stat-label">Total Issues</div>`)
	assert.Contains(t, s, `<div class="stat-value">1</div><div class="stat-label">Resolved</div>`)
	assert.Contains(t, s, `<div class="stat-value">2</div><div class="stat-label">Screenshots</div>`)
	assert.Contains(t, s, "<style>")
}

func TestRender_Deterministic(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			a, err := Render(f, sample(), now)
			require.NoError(t, err)
			b, err := Render(f, sample(), now)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(a, b))
		})
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render("pdf", sample(), now)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFilenameAndContentType(t *testing.T) {
	assert.Equal(t, "qiewallet-issue-report-2024-07-15.csv", Filename(FormatCSV, now))
	assert.Equal(t, "qiewallet-issue-report-2024-07-15.md", Filename(FormatMarkdown, now))
	assert.Equal(t, "qiewallet-issue-report-2024-07-15.html", Filename(FormatHTML, now))

	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
	assert.Equal(t, "text/markdown; charset=utf-8", ContentType(FormatMarkdown))
	assert.Equal(t, "text/html; charset=utf-8", ContentType(FormatHTML))
}
