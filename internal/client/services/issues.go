// Package services implements the dashboard's use cases on top of the API
// client, the syncer and the export engine.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/client/attachments"
	"github.com/dmitrijs2005/qatrack/internal/client/client"
	"github.com/dmitrijs2005/qatrack/internal/client/syncer"
	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/export"
	"github.com/dmitrijs2005/qatrack/internal/filex"
	"github.com/dmitrijs2005/qatrack/internal/issue"
)

type IssueService interface {
	View() syncer.Snapshot
	Get(ctx context.Context, id string) (issue.Issue, error)
	Report(ctx context.Context, in issue.Input, paths []string) (issue.Issue, []attachments.Result, error)
	Edit(ctx context.Context, id string, p Patch) (issue.Issue, []attachments.Result, error)
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context) error
	Export(f export.Format) (string, error)
	Stats() issue.Stats
	Ping(ctx context.Context) error
}

// View is the part of the syncer the service drives.
type View interface {
	Snapshot() syncer.Snapshot
	SyncNow(ctx context.Context) error
	AddLocal(it issue.Issue)
	RemoveLocal(id string)
}

// Patch lists the changes to an existing issue. Nil fields are left as they
// are.
type Patch struct {
	Title            *string
	Description      *string
	Type             *issue.Type
	Severity         *issue.Severity
	Status           *issue.Status
	Screen           *string
	StepsToReproduce *[]string
	ExpectedBehavior *string
	ActualBehavior   *string
	Environment      *string
	Device           *string
	OSVersion        *string
	AppVersion       *string
	ReportedBy       *string
	AssignedTo       *string
	Notes            *string

	// Attachments replaces every screenshot with the images at these paths.
	// An empty list removes all screenshots.
	Attachments *[]string
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

func (p Patch) apply(in *issue.Input) {
	set(&in.Title, p.Title)
	set(&in.Description, p.Description)
	set(&in.Type, p.Type)
	set(&in.Severity, p.Severity)
	set(&in.Status, p.Status)
	set(&in.Screen, p.Screen)
	if p.StepsToReproduce != nil {
		in.StepsToReproduce = append([]string{}, (*p.StepsToReproduce)...)
	}
	set(&in.ExpectedBehavior, p.ExpectedBehavior)
	set(&in.ActualBehavior, p.ActualBehavior)
	set(&in.Environment, p.Environment)
	set(&in.Device, p.Device)
	set(&in.OSVersion, p.OSVersion)
	set(&in.AppVersion, p.AppVersion)
	set(&in.ReportedBy, p.ReportedBy)
	set(&in.AssignedTo, p.AssignedTo)
	set(&in.Notes, p.Notes)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

type issueService struct {
	client    client.Client
	view      View
	reporter  string
	exportDir string
	nowFn     func() time.Time
	loadFn    func(ctx context.Context, paths []string) []attachments.Result
}

// NewIssueService wires the dashboard use cases. reporter fills reportedBy
// when a report leaves it empty; exportDir receives exported files.
func NewIssueService(c client.Client, v View, reporter, exportDir string) IssueService {
	return &issueService{
		client:    c,
		view:      v,
		reporter:  reporter,
		exportDir: exportDir,
		nowFn:     time.Now,
		loadFn:    attachments.Load,
	}
}

func (s *issueService) View() syncer.Snapshot {
	return s.view.Snapshot()
}

// Get prefers the synced view and asks the server only for ids it has not
// seen yet.
func (s *issueService) Get(ctx context.Context, id string) (issue.Issue, error) {
	for _, it := range s.view.Snapshot().Issues {
		if it.ID == id {
			return it, nil
		}
	}
	return s.client.GetIssue(ctx, id)
}

// Report files a new issue with the id minted here, so the optimistic copy and
// the stored one share it. Attachments that fail to load are skipped and
// returned to the caller; the issue is still filed.
func (s *issueService) Report(ctx context.Context, in issue.Input, paths []string) (issue.Issue, []attachments.Result, error) {
	if strings.TrimSpace(in.Title) == "" {
		return issue.Issue{}, nil, common.NewValidationError("title", "is required")
	}

	now := s.nowFn()

	var results []attachments.Result
	shots := []issue.Screenshot{}
	if len(paths) > 0 {
		results = s.loadFn(ctx, paths)
		shots, _ = attachments.Screenshots(results)
	}
	in.Screenshots = &shots

	if in.ID == "" {
		id, err := issue.NewID(now)
		if err != nil {
			return issue.Issue{}, results, err
		}
		in.ID = id
	}
	if in.ReportedBy == "" {
		in.ReportedBy = s.reporter
	}

	s.view.AddLocal(optimistic(in, now))

	created, err := s.client.CreateIssue(ctx, in)
	if err != nil {
		s.view.RemoveLocal(in.ID)
		return issue.Issue{}, results, fmt.Errorf("report issue: %w", err)
	}

	s.view.AddLocal(created)
	return created, results, nil
}

// Edit re-reads the issue from the server, applies p and writes the whole
// document back. Screenshots are sent only when p.Attachments is set; if none
// of the given files loads, the edit is refused rather than clearing them.
func (s *issueService) Edit(ctx context.Context, id string, p Patch) (issue.Issue, []attachments.Result, error) {
	if p.Empty() {
		return issue.Issue{}, nil, common.NewValidationError("", "nothing to change")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return issue.Issue{}, nil, common.NewValidationError("title", "is required")
	}

	var results []attachments.Result
	var shots *[]issue.Screenshot
	if p.Attachments != nil {
		loaded := []issue.Screenshot{}
		if paths := *p.Attachments; len(paths) > 0 {
			results = s.loadFn(ctx, paths)
			loaded, _ = attachments.Screenshots(results)
			if len(loaded) == 0 {
				return issue.Issue{}, results, common.NewValidationError("screenshots", "none of the files could be attached")
			}
		}
		shots = &loaded
	}

	current, err := s.client.GetIssue(ctx, id)
	if err != nil {
		return issue.Issue{}, results, fmt.Errorf("load issue %s: %w", id, err)
	}

	in := current.ToInput()
	in.Screenshots = shots
	p.apply(&in)

	updated, err := s.client.UpdateIssue(ctx, id, in)
	if err != nil {
		return issue.Issue{}, results, fmt.Errorf("update issue %s: %w", id, err)
	}

	s.view.AddLocal(updated)
	return updated, results, nil
}

// Delete removes the issue on the server and from the view. An id the server
// no longer knows is dropped from the view as well.
func (s *issueService) Delete(ctx context.Context, id string) error {
	err := s.client.DeleteIssue(ctx, id)
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		s.view.RemoveLocal(id)
	}
	if err != nil {
		return fmt.Errorf("delete issue %s: %w", id, err)
	}
	return nil
}

func (s *issueService) Sync(ctx context.Context) error {
	return s.view.SyncNow(ctx)
}

// Export renders the current view and writes it to the export directory,
// returning the written path.
func (s *issueService) Export(f export.Format) (string, error) {
	now := s.nowFn()
	data, err := export.Render(f, s.view.Snapshot().Issues, now)
	if err != nil {
		return "", err
	}
	return filex.WriteFile(s.exportDir, export.Filename(f, now), data)
}

func (s *issueService) Stats() issue.Stats {
	return issue.Summarize(s.view.Snapshot().Issues)
}

func (s *issueService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// optimistic builds the view entry shown while a report is in flight.
func optimistic(in issue.Input, now time.Time) issue.Issue {
	ts := issue.FormatTime(now)
	it := issue.Issue{
		ID:               in.ID,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Type:             orDefault(in.Type, issue.DefaultType),
		Severity:         orDefault(in.Severity, issue.DefaultSeverity),
		Status:           orDefault(in.Status, issue.DefaultStatus),
		Screen:           orDefault(in.Screen, issue.DefaultScreen),
		StepsToReproduce: append([]string{}, in.StepsToReproduce...),
		ExpectedBehavior: in.ExpectedBehavior,
		ActualBehavior:   in.ActualBehavior,
		Screenshots:      []issue.Screenshot{},
		Environment:      orDefault(in.Environment, issue.DefaultEnvironment),
		Device:           in.Device,
		OSVersion:        in.OSVersion,
		AppVersion:       in.AppVersion,
		ReportedBy:       in.ReportedBy,
		AssignedTo:       in.AssignedTo,
		Notes:            in.Notes,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
	if in.Screenshots != nil {
		it.Screenshots = append(it.Screenshots, (*in.Screenshots)...)
	}
	return it
}

func orDefault[T ~string](v, def T) T {
	if strings.TrimSpace(string(v)) == "" {
		return def
	}
	return v
}
