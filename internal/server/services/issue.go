package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
	"github.com/dmitrijs2005/qatrack/internal/server/store"
	"github.com/dmitrijs2005/qatrack/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// IssueService validates inbound payloads, applies them to the store and
// turns stored rows back into wire issues.
type IssueService struct {
	store store.Store
	nowFn func() time.Time
}

func NewIssueService(st store.Store) *IssueService {
	return &IssueService{store: st, nowFn: time.Now}
}

func (s *IssueService) List(ctx context.Context) (result []issue.Issue, err error) {
	ctx, span := startSpan(ctx, "IssueService.List")
	defer func() { endSpan(span, err) }()

	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	result = make([]issue.Issue, 0, len(rows))
	for _, r := range rows {
		result = append(result, toWire(r))
	}
	span.SetAttributes(attribute.Int("issue.count", len(result)))
	return result, nil
}

func (s *IssueService) Get(ctx context.Context, id string) (result issue.Issue, err error) {
	ctx, span := startSpan(ctx, "IssueService.Get", attribute.String("issue.id", id))
	defer func() { endSpan(span, err) }()

	row, err := s.store.Get(ctx, id)
	if err != nil {
		return issue.Issue{}, err
	}
	return toWire(row), nil
}

func (s *IssueService) Create(ctx context.Context, in issue.Input) (result issue.Issue, err error) {
	ctx, span := startSpan(ctx, "IssueService.Create")
	defer func() { endSpan(span, err) }()

	now := s.nowFn()

	id := strings.TrimSpace(in.ID)
	if id == "" {
		if id, err = issue.NewID(now); err != nil {
			return issue.Issue{}, err
		}
	}
	span.SetAttributes(attribute.String("issue.id", id))

	row, err := toRow(id, in, now)
	if err != nil {
		return issue.Issue{}, err
	}
	row.CreatedAt = now

	var shots []*models.Screenshot
	if in.Screenshots != nil {
		if shots, err = toScreenshotRows(*in.Screenshots, now); err != nil {
			return issue.Issue{}, err
		}
	}

	stored, err := s.store.Create(ctx, row, shots)
	if err != nil {
		return issue.Issue{}, err
	}
	return toWire(stored), nil
}

// Update replaces every field of the issue with the payload, falling back to
// defaults rather than stored values. Screenshots are replaced only when the
// payload carries the field.
func (s *IssueService) Update(ctx context.Context, id string, in issue.Input) (result issue.Issue, err error) {
	ctx, span := startSpan(ctx, "IssueService.Update", attribute.String("issue.id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return issue.Issue{}, common.NewValidationError("id", "is required")
	}

	now := s.nowFn()

	row, err := toRow(id, in, now)
	if err != nil {
		return issue.Issue{}, err
	}

	var shots *[]*models.Screenshot
	if in.Screenshots != nil {
		converted, err := toScreenshotRows(*in.Screenshots, now)
		if err != nil {
			return issue.Issue{}, err
		}
		shots = &converted
	}

	stored, err := s.store.Update(ctx, row, shots)
	if err != nil {
		return issue.Issue{}, err
	}
	return toWire(stored), nil
}

func (s *IssueService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "IssueService.Delete", attribute.String("issue.id", id))
	defer func() { endSpan(span, err) }()

	return s.store.Delete(ctx, id)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
