package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"worktrack/internal/task/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

// ListFilter narrows task listings. Nil fields mean "no constraint".
type ListFilter struct {
	Status       *models.Status
	DepartmentID *id.DepartmentID
	AssigneeID   *id.UserID
}

// InMemory keeps tasks in a map. Backs unit tests and development runs.
type InMemory struct {
	mu    sync.RWMutex
	tasks map[id.TaskID]*models.Task
}

func NewInMemory() *InMemory {
	return &InMemory{tasks: make(map[id.TaskID]*models.Task)}
}

func (s *InMemory) Create(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; ok {
		return sentinel.ErrConflict
	}
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, taskID id.TaskID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneTask(t), nil
}

func (s *InMemory) Update(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

// UpdateFields persists only the named fields. The memory implementation
// copies them individually so it exercises the same partial-write path the
// postgres store uses.
func (s *InMemory) UpdateFields(_ context.Context, t *models.Task, fields []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tasks[t.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for _, field := range fields {
		switch field {
		case models.FieldProgress:
			stored.Progress = t.Progress
		case models.FieldStatus:
			stored.Status = t.Status
		case models.FieldDeadline:
			stored.Deadline = copyTime(t.Deadline)
		case models.FieldApprover:
			stored.Approver = copyUser(t.Approver)
		case models.FieldApprovedAt:
			stored.ApprovedAt = copyTime(t.ApprovedAt)
		case models.FieldUpdatedAt:
			stored.UpdatedAt = t.UpdatedAt
		}
	}
	return nil
}

func (s *InMemory) Delete(_ context.Context, taskID id.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

// List returns matching tasks newest-first.
func (s *InMemory) List(_ context.Context, filter ListFilter) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Task
	for _, t := range s.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.DepartmentID != nil {
			if t.DepartmentID == nil || *t.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		if filter.AssigneeID != nil && t.Assignee != *filter.AssigneeID {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// IsUserReferenced reports whether the user appears as assigner or
// assignee on any task. Those references protect the identity from
// deletion.
func (s *InMemory) IsUserReferenced(_ context.Context, userID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.AssignedBy == userID || t.Assignee == userID {
			return true, nil
		}
	}
	return false, nil
}

func cloneTask(t *models.Task) *models.Task {
	cp := *t
	cp.Supporters = append([]id.UserID(nil), t.Supporters...)
	cp.Deadline = copyTime(t.Deadline)
	cp.ApprovedAt = copyTime(t.ApprovedAt)
	cp.Approver = copyUser(t.Approver)
	cp.EstimatedHours = copyInt(t.EstimatedHours)
	cp.DepartmentID = copyDept(t.DepartmentID)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func copyUser(u *id.UserID) *id.UserID {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}

func copyDept(d *id.DepartmentID) *id.DepartmentID {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
