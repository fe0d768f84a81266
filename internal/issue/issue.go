package issue

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/shared"
	"github.com/google/uuid"
)

const (
	DefaultType        = TypeBug
	DefaultSeverity    = SeverityMedium
	DefaultStatus      = StatusOpen
	DefaultEnvironment = "Production"

	// MaxScreenshotSize is the per-attachment ceiling in bytes.
	MaxScreenshotSize = 5 * 1024 * 1024

	// TimeLayout is the ISO-8601 form used for every timestamp on the wire.
	TimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// DefaultScreen is the first entry of Screens.
var DefaultScreen = Screens[0]

// Screenshot is an image attachment owned by exactly one Issue.
type Screenshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Data       string `json:"data"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploadedAt"`
}

// Issue is the API representation of a tracked report.
type Issue struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Type             Type         `json:"type"`
	Severity         Severity     `json:"severity"`
	Status           Status       `json:"status"`
	Screen           string       `json:"screen"`
	StepsToReproduce []string     `json:"stepsToReproduce"`
	ExpectedBehavior string       `json:"expectedBehavior"`
	ActualBehavior   string       `json:"actualBehavior"`
	Screenshots      []Screenshot `json:"screenshots"`
	Environment      string       `json:"environment"`
	Device           string       `json:"device"`
	OSVersion        string       `json:"osVersion"`
	AppVersion       string       `json:"appVersion"`
	ReportedBy       string       `json:"reportedBy"`
	AssignedTo       string       `json:"assignedTo"`
	Notes            string       `json:"notes"`
	CreatedAt        string       `json:"createdAt"`
	UpdatedAt        string       `json:"updatedAt"`
}

// Input is the body of a create or update request. Screenshots is a pointer
// so that an absent (or null) field can be told apart from an empty list.
type Input struct {
	ID               string        `json:"id,omitempty"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Type             Type          `json:"type"`
	Severity         Severity      `json:"severity"`
	Status           Status        `json:"status"`
	Screen           string        `json:"screen"`
	StepsToReproduce []string      `json:"stepsToReproduce"`
	ExpectedBehavior string        `json:"expectedBehavior"`
	ActualBehavior   string        `json:"actualBehavior"`
	Screenshots      *[]Screenshot `json:"screenshots,omitempty"`
	Environment      string        `json:"environment"`
	Device           string        `json:"device"`
	OSVersion        string        `json:"osVersion"`
	AppVersion       string        `json:"appVersion"`
	ReportedBy       string        `json:"reportedBy"`
	AssignedTo       string        `json:"assignedTo"`
	Notes            string        `json:"notes"`
}

// ToInput converts an Issue back into a full-document request body that
// carries its screenshots.
func (i Issue) ToInput() Input {
	shots := append([]Screenshot{}, i.Screenshots...)
	return Input{
		ID:               i.ID,
		Title:            i.Title,
		Description:      i.Description,
		Type:             i.Type,
		Severity:         i.Severity,
		Status:           i.Status,
		Screen:           i.Screen,
		StepsToReproduce: append([]string{}, i.StepsToReproduce...),
		ExpectedBehavior: i.ExpectedBehavior,
		ActualBehavior:   i.ActualBehavior,
		Screenshots:      &shots,
		Environment:      i.Environment,
		Device:           i.Device,
		OSVersion:        i.OSVersion,
		AppVersion:       i.AppVersion,
		ReportedBy:       i.ReportedBy,
		AssignedTo:       i.AssignedTo,
		Notes:            i.Notes,
	}
}

// NonEmptySteps returns the reproduction steps with blank entries removed.
func (i Issue) NonEmptySteps() []string {
	out := make([]string, 0, len(i.StepsToReproduce))
	for _, s := range i.StepsToReproduce {
		if trimmed := trimSpace(s); trimmed != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewID mints an issue id of the form ISS-<base36 millis>-<3 random chars>.
func NewID(now time.Time) (string, error) {
	suffix, err := shared.RandBase36(3)
	if err != nil {
		return "", fmt.Errorf("issue id: %w", err)
	}
	return fmt.Sprintf("ISS-%s-%s", shared.FormatBase36(now.UnixMilli()), suffix), nil
}

// NewScreenshotID mints a screenshot id.
func NewScreenshotID() string {
	return "ss-" + uuid.NewString()
}

// FormatTime renders t in the wire layout, always in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts any RFC 3339 timestamp, with or without fractional seconds.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
