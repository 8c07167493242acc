package update

import (
	"context"
	"sort"
	"sync"

	"worktrack/internal/task/models"
	id "worktrack/pkg/domain"
)

// InMemory keeps ledger entries in task-keyed slices. Append-only by
// construction: the store exposes no edit or single-delete operation.
type InMemory struct {
	mu      sync.RWMutex
	updates map[id.TaskID][]*models.Update
}

func NewInMemory() *InMemory {
	return &InMemory{updates: make(map[id.TaskID][]*models.Update)}
}

func (s *InMemory) Append(_ context.Context, u *models.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.updates[u.TaskID] = append(s.updates[u.TaskID], &cp)
	return nil
}

// ListByTask returns a task's ledger entries newest-first.
func (s *InMemory) ListByTask(_ context.Context, taskID id.TaskID) ([]*models.Update, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.updates[taskID]
	out := make([]*models.Update, 0, len(entries))
	for _, u := range entries {
		cp := *u
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteByTask removes a task's whole ledger. Only the cascade path on
// task deletion uses it.
func (s *InMemory) DeleteByTask(_ context.Context, taskID id.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updates, taskID)
	return nil
}
