package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"worktrack/internal/department/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

// InMemory keeps departments in a map. Uniqueness of name (case-insensitive)
// and code is enforced the same way the postgres indexes do.
type InMemory struct {
	mu          sync.RWMutex
	departments map[id.DepartmentID]*models.Department
}

func NewInMemory() *InMemory {
	return &InMemory{departments: make(map[id.DepartmentID]*models.Department)}
}

func (s *InMemory) CreateIfAvailable(_ context.Context, dept *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.departments {
		if strings.EqualFold(existing.Name, dept.Name) {
			return sentinel.ErrConflict
		}
		if dept.Code != "" && existing.Code == dept.Code {
			return sentinel.ErrConflict
		}
	}
	cp := *dept
	s.departments[dept.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, deptID id.DepartmentID) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dept, ok := s.departments[deptID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *dept
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, dept *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[dept.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *dept
	s.departments[dept.ID] = &cp
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Department, 0, len(s.departments))
	for _, dept := range s.departments {
		cp := *dept
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
