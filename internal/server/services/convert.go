package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
)

// toRow normalizes a payload into a storage row: defaults for empty fields,
// a trimmed non-empty title, known enum values and JSON-encoded steps.
// CreatedAt is left to the caller.
func toRow(id string, in issue.Input, now time.Time) (*models.Issue, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.NewValidationError("title", "is required")
	}

	typ := in.Type
	if typ == "" {
		typ = issue.DefaultType
	}
	if !typ.IsValid() {
		return nil, common.NewValidationError("type", fmt.Sprintf("unknown value %q", typ))
	}

	sev := in.Severity
	if sev == "" {
		sev = issue.DefaultSeverity
	}
	if !sev.IsValid() {
		return nil, common.NewValidationError("severity", fmt.Sprintf("unknown value %q", sev))
	}

	st := in.Status
	if st == "" {
		st = issue.DefaultStatus
	}
	if !st.IsValid() {
		return nil, common.NewValidationError("status", fmt.Sprintf("unknown value %q", st))
	}

	steps, err := encodeSteps(in.StepsToReproduce)
	if err != nil {
		return nil, err
	}

	return &models.Issue{
		ID:               id,
		Title:            title,
		Description:      in.Description,
		Type:             string(typ),
		Severity:         string(sev),
		Status:           string(st),
		Screen:           orDefault(in.Screen, issue.DefaultScreen),
		StepsToReproduce: steps,
		ExpectedBehavior: in.ExpectedBehavior,
		ActualBehavior:   in.ActualBehavior,
		Environment:      orDefault(in.Environment, issue.DefaultEnvironment),
		Device:           in.Device,
		OSVersion:        in.OSVersion,
		AppVersion:       in.AppVersion,
		ReportedBy:       in.ReportedBy,
		AssignedTo:       in.AssignedTo,
		Notes:            in.Notes,
		UpdatedAt:        now,
	}, nil
}

// toScreenshotRows validates screenshots and turns them into rows. The stored
// size is the decoded length of data, whatever the client reported.
func toScreenshotRows(in []issue.Screenshot, now time.Time) ([]*models.Screenshot, error) {
	out := make([]*models.Screenshot, 0, len(in))
	for i, sh := range in {
		field := fmt.Sprintf("screenshots[%d]", i)

		if sh.Data == "" {
			return nil, common.NewValidationError(field, "data is required")
		}
		if sh.Size < 0 || sh.Size > issue.MaxScreenshotSize {
			return nil, common.NewValidationError(field, fmt.Sprintf("size %d exceeds %d bytes", sh.Size, issue.MaxScreenshotSize))
		}
		mediaType, size, err := issue.ImageDataURISize(sh.Data)
		if err != nil {
			return nil, common.NewValidationError(field, "data must be a base64 image data URI")
		}
		if size > issue.MaxScreenshotSize {
			return nil, common.NewValidationError(field, fmt.Sprintf("image of %d bytes exceeds %d bytes", size, issue.MaxScreenshotSize))
		}
		typ := sh.Type
		if typ == "" {
			typ = mediaType
		}

		uploaded := now
		if sh.UploadedAt != "" {
			t, err := issue.ParseTime(sh.UploadedAt)
			if err != nil {
				return nil, common.NewValidationError(field, "uploadedAt is not an ISO-8601 timestamp")
			}
			uploaded = t
		}

		id := sh.ID
		if id == "" {
			id = issue.NewScreenshotID()
		}

		out = append(out, &models.Screenshot{
			ID:         id,
			Name:       sh.Name,
			Data:       sh.Data,
			Type:       typ,
			Size:       size,
			UploadedAt: uploaded.UTC(),
		})
	}
	return out, nil
}

func toWire(row *models.StoredIssue) issue.Issue {
	shots := make([]issue.Screenshot, 0, len(row.Screenshots))
	for _, sh := range row.Screenshots {
		shots = append(shots, issue.Screenshot{
			ID:         sh.ID,
			Name:       sh.Name,
			Data:       sh.Data,
			Type:       sh.Type,
			Size:       sh.Size,
			UploadedAt: issue.FormatTime(sh.UploadedAt),
		})
	}

	return issue.Issue{
		ID:               row.ID,
		Title:            row.Title,
		Description:      row.Description,
		Type:             issue.Type(row.Type),
		Severity:         issue.Severity(row.Severity),
		Status:           issue.Status(row.Status),
		Screen:           row.Screen,
		StepsToReproduce: decodeSteps(row.StepsToReproduce),
		ExpectedBehavior: row.ExpectedBehavior,
		ActualBehavior:   row.ActualBehavior,
		Screenshots:      shots,
		Environment:      row.Environment,
		Device:           row.Device,
		OSVersion:        row.OSVersion,
		AppVersion:       row.AppVersion,
		ReportedBy:       row.ReportedBy,
		AssignedTo:       row.AssignedTo,
		Notes:            row.Notes,
		CreatedAt:        issue.FormatTime(row.CreatedAt),
		UpdatedAt:        issue.FormatTime(row.UpdatedAt),
	}
}

func encodeSteps(steps []string) (string, error) {
	if steps == nil {
		steps = []string{}
	}
	b, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("encode steps: %w", err)
	}
	return string(b), nil
}

// decodeSteps treats a blank column as no steps. A column that is not a JSON
// array is surfaced as a single step so its text is not lost.
func decodeSteps(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var steps []string
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return []string{raw}
	}
	if steps == nil {
		return []string{}
	}
	return steps
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
