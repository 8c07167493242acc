// Package service orchestrates the department registry.
package service

import (
	"context"
	"errors"
	"log/slog"

	"worktrack/internal/department/models"
	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
	audit "worktrack/pkg/platform/audit"
	"worktrack/pkg/platform/sentinel"
	"worktrack/pkg/requestcontext"
)

type Store interface {
	CreateIfAvailable(ctx context.Context, dept *models.Department) error
	FindByID(ctx context.Context, deptID id.DepartmentID) (*models.Department, error)
	Update(ctx context.Context, dept *models.Department) error
	List(ctx context.Context) ([]*models.Department, error)
}

// Service manages the flat registry of departments.
type Service struct {
	departments Store
	logger      *slog.Logger
	audit       audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// New constructs the department service.
func New(departments Store, opts ...Option) *Service {
	s := &Service{departments: departments}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new department. Name and code must be unique.
func (s *Service) Create(ctx context.Context, name, code, description string) (*models.Department, error) {
	dept, err := models.New(id.NewDepartmentID(), name, code, description, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.departments.CreateIfAvailable(ctx, dept); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "department name and code must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create department")
	}

	if s.audit != nil {
		if err := s.audit.Emit(ctx, audit.Event{
			Timestamp: requestcontext.Now(ctx),
			Action:    audit.ActionDepartmentCreated,
			ActorID:   requestcontext.ActorID(ctx),
			Subject:   dept.ID.String(),
			Detail:    dept.Name,
			RequestID: requestcontext.RequestID(ctx),
		}); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "error", err)
		}
	}
	return dept, nil
}

// Get fetches one department by ID.
func (s *Service) Get(ctx context.Context, deptID id.DepartmentID) (*models.Department, error) {
	dept, err := s.departments.FindByID(ctx, deptID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "department not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load department")
	}
	return dept, nil
}

// List returns all departments ordered by name.
func (s *Service) List(ctx context.Context) ([]*models.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list departments")
	}
	return departments, nil
}

// Deactivate marks a department inactive.
func (s *Service) Deactivate(ctx context.Context, deptID id.DepartmentID) (*models.Department, error) {
	dept, err := s.Get(ctx, deptID)
	if err != nil {
		return nil, err
	}
	if err := dept.Deactivate(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update department")
	}
	return dept, nil
}
