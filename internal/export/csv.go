package export

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
)

var csvHeader = []string{
	"ID", "Title", "Description", "Screen", "Severity", "Status", "Type",
	"Steps to Reproduce", "Expected Behavior", "Actual Behavior",
	"Screenshot Count", "Screenshot Filenames",
	"Environment", "Device", "OS Version", "App Version",
	"Reported By", "Assigned To", "Created At", "Updated At", "Notes",
}

// CSV writes one header row and one row per issue. Text fields are always
// quoted; the screenshot count is the only bare field.
func CSV(issues []issue.Issue, _ time.Time) []byte {
	var b bytes.Buffer

	b.WriteString(strings.Join(csvHeader, ","))
	b.WriteByte('\n')

	for _, it := range issues {
		names := make([]string, 0, len(it.Screenshots))
		for _, sh := range it.Screenshots {
			names = append(names, sh.Name)
		}

		fields := []string{
			quote(it.ID),
			quote(it.Title),
			quote(it.Description),
			quote(it.Screen),
			quote(it.Severity.Label()),
			quote(it.Status.Label()),
			quote(it.Type.Label()),
			quote(strings.Join(it.NonEmptySteps(), " | ")),
			quote(it.ExpectedBehavior),
			quote(it.ActualBehavior),
			strconv.Itoa(len(it.Screenshots)),
			quote(strings.Join(names, "; ")),
			quote(it.Environment),
			quote(it.Device),
			quote(it.OSVersion),
			quote(it.AppVersion),
			quote(it.ReportedBy),
			quote(it.AssignedTo),
			quote(it.CreatedAt),
			quote(it.UpdatedAt),
			quote(it.Notes),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}

	return b.Bytes()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
