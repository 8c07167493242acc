package role

import (
	"context"
	"sort"
	"sync"

	"worktrack/internal/identity/models"
	"worktrack/pkg/platform/sentinel"
)

// InMemory keeps roles in a map keyed by name.
type InMemory struct {
	mu    sync.RWMutex
	roles map[string]*models.Role
}

func NewInMemory() *InMemory {
	return &InMemory{roles: make(map[string]*models.Role)}
}

// Save upserts a role. Bootstrap re-runs are expected; the latest
// capability set wins.
func (s *InMemory) Save(_ context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := models.Role{Name: r.Name, Capabilities: append([]string(nil), r.Capabilities...)}
	s.roles[r.Name] = &cp
	return nil
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := models.Role{Name: r.Name, Capabilities: append([]string(nil), r.Capabilities...)}
	return &cp, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		cp := models.Role{Name: r.Name, Capabilities: append([]string(nil), r.Capabilities...)}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
