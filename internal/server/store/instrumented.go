package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/metrics"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
)

// Instrumented decorates a Store with operation counters and latencies.
type Instrumented struct {
	next    Store
	metrics *metrics.Metrics
}

func NewInstrumented(next Store, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	s.metrics.ObserveStore(op, err, time.Since(start))
}

func (s *Instrumented) Create(ctx context.Context, issue *models.Issue, shots []*models.Screenshot) (*models.StoredIssue, error) {
	start := time.Now()
	res, err := s.next.Create(ctx, issue, shots)
	s.observe("create", start, err)
	return res, err
}

func (s *Instrumented) Get(ctx context.Context, id string) (*models.StoredIssue, error) {
	start := time.Now()
	res, err := s.next.Get(ctx, id)
	s.observe("get", start, err)
	return res, err
}

func (s *Instrumented) List(ctx context.Context) ([]*models.StoredIssue, error) {
	start := time.Now()
	res, err := s.next.List(ctx)
	s.observe("list", start, err)
	return res, err
}

func (s *Instrumented) Update(ctx context.Context, issue *models.Issue, shots *[]*models.Screenshot) (*models.StoredIssue, error) {
	start := time.Now()
	res, err := s.next.Update(ctx, issue, shots)
	s.observe("update", start, err)
	return res, err
}

func (s *Instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.observe("delete", start, err)
	return err
}
