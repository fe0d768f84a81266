// Package syncer keeps the dashboard's view of issues in step with the issue
// API by polling it.
//
// A Syncer fetches the full list immediately on Start and then on every
// interval tick. Each fetch is numbered; a result is applied only if it is
// newer than the last one applied, so a slow response can never overwrite a
// fresher one. Failed fetches are logged and leave the last good view in
// place.
//
// Issues created or deleted from this dashboard can be reflected straight
// away with AddLocal and RemoveLocal. A locally added issue stays at the top
// of the view until a fetch returns it. A removed issue stays hidden from any
// fetch that was already running when it was removed.
package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/dmitrijs2005/qatrack/internal/logging"
)

const DefaultInterval = 5 * time.Second

var (
	ErrAlreadyStarted = errors.New("syncer already started")
	ErrStopped        = errors.New("syncer stopped")
)

type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
)

// Fetcher returns the server's current issue list.
type Fetcher interface {
	ListIssues(ctx context.Context) ([]issue.Issue, error)
}

// Cache persists applied results between runs.
type Cache interface {
	Load(ctx context.Context) ([]issue.Issue, time.Time, error)
	Save(ctx context.Context, issues []issue.Issue, lastSync time.Time) error
}

// Snapshot is a copy of the view at one point in time.
type Snapshot struct {
	Issues   []issue.Issue
	LastSync time.Time
	State    State
	// LastErr is the error of the most recent failed fetch, cleared by the
	// next applied one.
	LastErr error
}

type Syncer struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
	nowFn    func() time.Time

	seq atomic.Uint64

	mu         sync.Mutex
	remote     []issue.Issue
	local      []issue.Issue
	tombstones map[string]uint64
	applied    uint64
	inflight   int
	lastSync   time.Time
	lastErr    error
	onChange   func(Snapshot)
	cache      Cache

	saveMu    sync.Mutex
	lastSaved uint64

	runMu   sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// New builds a Syncer. A non-positive interval falls back to DefaultInterval;
// a non-positive timeout leaves fetches bounded only by their context.
func New(f Fetcher, interval, timeout time.Duration, l logging.Logger) *Syncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Syncer{
		fetcher:    f,
		interval:   interval,
		timeout:    timeout,
		logger:     l,
		nowFn:      time.Now,
		remote:     []issue.Issue{},
		tombstones: map[string]uint64{},
	}
}

// OnChange registers fn to be called, outside any lock, after every applied
// fetch.
func (s *Syncer) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// SetCache makes the Syncer seed its view from c on Start and write every
// applied result back to it.
func (s *Syncer) SetCache(c Cache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = c
}

// Start runs the polling loop until ctx is done or Stop is called.
func (s *Syncer) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	s.warmStart(ctx)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop cancels the loop and waits for it and any in-flight fetch to return.
// It is safe to call more than once.
func (s *Syncer) Stop() {
	s.runMu.Lock()
	s.stopped = true
	cancel := s.cancel
	s.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// SyncNow performs one fetch outside the regular schedule.
func (s *Syncer) SyncNow(ctx context.Context) error {
	s.runMu.Lock()
	if s.stopped {
		s.runMu.Unlock()
		return ErrStopped
	}
	s.wg.Add(1)
	s.runMu.Unlock()
	defer s.wg.Done()

	return s.fetch(ctx)
}

// AddLocal shows it at the top of the view until a fetch returns an issue
// with the same id. Adding the same id again replaces the pending copy.
func (s *Syncer) AddLocal(it issue.Issue) {
	s.mu.Lock()
	out := []issue.Issue{it}
	for _, l := range s.local {
		if l.ID != it.ID {
			out = append(out, l)
		}
	}
	s.local = out
	delete(s.tombstones, it.ID)
	s.mu.Unlock()
}

// RemoveLocal drops id from the view now.
func (s *Syncer) RemoveLocal(id string) {
	s.mu.Lock()
	s.local = without(s.local, id)
	s.remote = without(s.remote, id)
	s.tombstones[id] = s.seq.Load()
	s.mu.Unlock()
}

func (s *Syncer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Syncer) loop(ctx context.Context) {
	defer s.wg.Done()

	_ = s.fetch(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.fetch(ctx)
		}
	}
}

func (s *Syncer) warmStart(ctx context.Context) {
	s.mu.Lock()
	c := s.cache
	s.mu.Unlock()
	if c == nil {
		return
	}

	issues, last, err := c.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to load cached issues", "error", err)
		return
	}

	s.mu.Lock()
	if s.applied == 0 {
		s.remote = issues
		s.lastSync = last
	}
	s.mu.Unlock()
}

func (s *Syncer) fetch(ctx context.Context) error {
	seq := s.seq.Add(1)

	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	fctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	issues, err := s.fetcher.ListIssues(fctx)

	s.mu.Lock()
	s.inflight--

	if seq <= s.applied {
		s.mu.Unlock()
		s.logger.Debug(ctx, "discarding stale sync result", "seq", seq)
		return nil
	}

	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warn(ctx, "sync failed", "error", err, "seq", seq)
		return err
	}

	s.apply(seq, issues)
	snap := s.snapshotLocked()
	remote := cloneIssues(s.remote)
	onChange, c := s.onChange, s.cache
	s.mu.Unlock()

	s.logger.Debug(ctx, "sync applied", "seq", seq, "issues", len(remote))

	if c != nil {
		s.save(ctx, c, seq, remote, snap.LastSync)
	}
	if onChange != nil {
		onChange(snap)
	}
	return nil
}

// apply must be called with mu held.
func (s *Syncer) apply(seq uint64, issues []issue.Issue) {
	s.applied = seq
	s.lastSync = s.nowFn()
	s.lastErr = nil

	for id, at := range s.tombstones {
		if seq > at {
			delete(s.tombstones, id)
		}
	}

	remote := make([]issue.Issue, 0, len(issues))
	seen := make(map[string]struct{}, len(issues))
	for _, it := range issues {
		seen[it.ID] = struct{}{}
		if _, gone := s.tombstones[it.ID]; gone {
			continue
		}
		remote = append(remote, it)
	}
	s.remote = remote

	local := s.local[:0:0]
	for _, it := range s.local {
		if _, ok := seen[it.ID]; !ok {
			local = append(local, it)
		}
	}
	s.local = local
}

func (s *Syncer) save(ctx context.Context, c Cache, seq uint64, issues []issue.Issue, lastSync time.Time) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if seq <= s.lastSaved {
		return
	}
	if err := c.Save(ctx, issues, lastSync); err != nil {
		s.logger.Warn(ctx, "failed to cache issues", "error", err)
		return
	}
	s.lastSaved = seq
}

func (s *Syncer) snapshotLocked() Snapshot {
	view := make([]issue.Issue, 0, len(s.local)+len(s.remote))
	pending := make(map[string]struct{}, len(s.local))
	for _, it := range s.local {
		pending[it.ID] = struct{}{}
		view = append(view, cloneIssue(it))
	}
	for _, it := range s.remote {
		if _, ok := pending[it.ID]; ok {
			continue
		}
		view = append(view, cloneIssue(it))
	}

	state := StateIdle
	if s.inflight > 0 {
		state = StateFetching
	}

	return Snapshot{
		Issues:   view,
		LastSync: s.lastSync,
		State:    state,
		LastErr:  s.lastErr,
	}
}

func without(list []issue.Issue, id string) []issue.Issue {
	out := list[:0:0]
	for _, it := range list {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func cloneIssues(list []issue.Issue) []issue.Issue {
	out := make([]issue.Issue, len(list))
	for i, it := range list {
		out[i] = cloneIssue(it)
	}
	return out
}

func cloneIssue(it issue.Issue) issue.Issue {
	if it.StepsToReproduce != nil {
		it.StepsToReproduce = append([]string{}, it.StepsToReproduce...)
	}
	if it.Screenshots != nil {
		it.Screenshots = append([]issue.Screenshot{}, it.Screenshots...)
	}
	return it
}
