package feedback

import (
	"context"
	"sort"
	"sync"

	"worktrack/internal/task/models"
	id "worktrack/pkg/domain"
)

// InMemory keeps feedback entries in process memory. Used by unit tests
// and as the fallback when no database is configured.
type InMemory struct {
	mu      sync.RWMutex
	entries map[id.TaskID][]*models.Feedback
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[id.TaskID][]*models.Feedback)}
}

func (s *InMemory) Append(ctx context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *f
	s.entries[f.TaskID] = append(s.entries[f.TaskID], &clone)
	return nil
}

// ListByTask returns a task's feedback entries newest-first.
func (s *InMemory) ListByTask(ctx context.Context, taskID id.TaskID) ([]*models.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.entries[taskID]
	out := make([]*models.Feedback, 0, len(stored))
	for _, f := range stored {
		clone := *f
		out = append(out, &clone)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) DeleteByTask(ctx context.Context, taskID id.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, taskID)
	return nil
}
