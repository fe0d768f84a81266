package store

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/dmitrijs2005/qatrack/internal/server/models"
)

// MemoryStore keeps issues in process memory. A single mutex makes every
// operation atomic. Values are copied in and out so callers never share
// state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	issues map[string]*models.StoredIssue
	// owner maps screenshot id to issue id; screenshot ids are unique system-wide.
	owner map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		issues: make(map[string]*models.StoredIssue),
		owner:  make(map[string]string),
	}
}

func (m *MemoryStore) Create(_ context.Context, issue *models.Issue, shots []*models.Screenshot) (*models.StoredIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.issues[issue.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if err := m.checkScreenshotIDs(issue.ID, shots); err != nil {
		return nil, err
	}

	stored := &models.StoredIssue{Issue: *issue, Screenshots: copyShots(issue.ID, shots)}
	sortScreenshots(stored.Screenshots)
	m.issues[issue.ID] = stored
	for _, sh := range stored.Screenshots {
		m.owner[sh.ID] = issue.ID
	}

	return cloneStored(stored), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.StoredIssue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.issues[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneStored(stored), nil
}

func (m *MemoryStore) List(_ context.Context) ([]*models.StoredIssue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.StoredIssue, 0, len(m.issues))
	for _, stored := range m.issues {
		result = append(result, cloneStored(stored))
	}
	sortIssues(result)
	return result, nil
}

func (m *MemoryStore) Update(_ context.Context, issue *models.Issue, shots *[]*models.Screenshot) (*models.StoredIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.issues[issue.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if shots != nil {
		if err := m.checkScreenshotIDs(issue.ID, *shots); err != nil {
			return nil, err
		}
	}

	next := &models.StoredIssue{Issue: *issue, Screenshots: stored.Screenshots}
	next.CreatedAt = stored.CreatedAt

	if shots != nil {
		for _, sh := range stored.Screenshots {
			delete(m.owner, sh.ID)
		}
		next.Screenshots = copyShots(issue.ID, *shots)
		sortScreenshots(next.Screenshots)
		for _, sh := range next.Screenshots {
			m.owner[sh.ID] = issue.ID
		}
	}

	m.issues[issue.ID] = next
	return cloneStored(next), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.issues[id]
	if !ok {
		return common.ErrorNotFound
	}
	for _, sh := range stored.Screenshots {
		delete(m.owner, sh.ID)
	}
	delete(m.issues, id)
	return nil
}

// ScreenshotCount reports how many screenshot rows exist across all issues.
func (m *MemoryStore) ScreenshotCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.owner)
}

// checkScreenshotIDs rejects ids owned by another issue or repeated in the batch.
func (m *MemoryStore) checkScreenshotIDs(issueID string, shots []*models.Screenshot) error {
	seen := make(map[string]struct{}, len(shots))
	for _, sh := range shots {
		if _, dup := seen[sh.ID]; dup {
			return common.ErrorAlreadyExists
		}
		seen[sh.ID] = struct{}{}
		if owner, ok := m.owner[sh.ID]; ok && owner != issueID {
			return common.ErrorAlreadyExists
		}
	}
	return nil
}

func copyShots(issueID string, shots []*models.Screenshot) []*models.Screenshot {
	out := make([]*models.Screenshot, 0, len(shots))
	for i, sh := range shots {
		c := *sh
		c.IssueID = issueID
		c.Position = i
		out = append(out, &c)
	}
	return out
}

func cloneStored(s *models.StoredIssue) *models.StoredIssue {
	c := &models.StoredIssue{Issue: s.Issue, Screenshots: make([]*models.Screenshot, 0, len(s.Screenshots))}
	for _, sh := range s.Screenshots {
		sc := *sh
		c.Screenshots = append(c.Screenshots, &sc)
	}
	return c
}
