// Package service orchestrates identity provisioning and actor resolution.
//
// The identity provider owns authentication; this service owns the
// task-tracking side of an identity: the profile, the role capabilities,
// and the Actor view the authorization engine evaluates.
package service

import (
	"context"
	"errors"
	"log/slog"

	"worktrack/internal/identity/models"
	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
	audit "worktrack/pkg/platform/audit"
	"worktrack/pkg/platform/sentinel"
	"worktrack/pkg/requestcontext"
)

type UserStore interface {
	CreateIfUsernameAvailable(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
}

type ProfileStore interface {
	Save(ctx context.Context, profile *models.Profile) error
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Profile, error)
	Delete(ctx context.Context, userID id.UserID) error
}

type RoleStore interface {
	Save(ctx context.Context, role *models.Role) error
	FindByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
}

// TaskReferences reports whether an identity is still referenced by any
// task as assigner or assignee. Deletion is protected, not cascaded, for
// those references.
type TaskReferences interface {
	IsUserReferenced(ctx context.Context, userID id.UserID) (bool, error)
}

// Service orchestrates identity lifecycle operations.
type Service struct {
	users    UserStore
	profiles ProfileStore
	roles    RoleStore
	taskRefs TaskReferences
	logger   *slog.Logger
	audit    audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithTaskReferences(refs TaskReferences) Option {
	return func(s *Service) { s.taskRefs = refs }
}

// New constructs the identity service.
func New(users UserStore, profiles ProfileStore, roles RoleStore, opts ...Option) *Service {
	s := &Service{users: users, profiles: profiles, roles: roles}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIdentityInput carries everything needed to provision an identity
// together with its task-tracking profile.
type CreateIdentityInput struct {
	Username     string
	IsSuperuser  bool
	IsStaff      bool
	RoleNames    []string
	DepartmentID *id.DepartmentID
	Phone        string
	Position     string
}

// CreateIdentity provisions a user and, synchronously, its profile. The
// profile creation is an explicit step of the provisioning workflow rather
// than a hidden hook on user creation, so the coupling stays visible here.
func (s *Service) CreateIdentity(ctx context.Context, input CreateIdentityInput) (*models.User, error) {
	user, err := models.NewUser(id.NewUserID(), input.Username, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	user.IsSuperuser = input.IsSuperuser
	user.IsStaff = input.IsStaff
	user.RoleNames = input.RoleNames

	for _, name := range input.RoleNames {
		if _, err := s.roles.FindByName(ctx, name); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.Newf(dErrors.CodeValidation, "unknown role %q", name)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve role")
		}
	}

	if err := s.users.CreateIfUsernameAvailable(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "username must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if _, err := s.ProvisionProfile(ctx, user.ID, input.DepartmentID, input.Phone, input.Position); err != nil {
		return nil, err
	}
	return user, nil
}

// ProvisionProfile ensures the task-tracking profile for a user exists with
// the given fields. Safe to call repeatedly; the latest values win.
func (s *Service) ProvisionProfile(ctx context.Context, userID id.UserID, departmentID *id.DepartmentID, phone, position string) (*models.Profile, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	profile := &models.Profile{
		UserID:       userID,
		DepartmentID: departmentID,
		Phone:        phone,
		Position:     position,
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}

	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionProfileProvisioned,
		ActorID:   requestcontext.ActorID(ctx),
		Subject:   userID.String(),
		RequestID: requestcontext.RequestID(ctx),
	})
	return profile, nil
}

// ResolveActor loads the user, its profile, and the union of its role
// capabilities into the Actor view the authorization engine consumes.
func (s *Service) ResolveActor(ctx context.Context, userID id.UserID) (*models.Actor, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	var capabilities []string
	for _, name := range user.RoleNames {
		role, err := s.roles.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// Role removed after assignment; treat as no capabilities.
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve role")
		}
		capabilities = append(capabilities, role.Capabilities...)
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	return models.NewActor(user, capabilities, profile), nil
}

// UpdateProfile replaces the profile fields for an existing identity.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, departmentID *id.DepartmentID, phone, position string) (*models.Profile, error) {
	if _, err := s.profiles.FindByUserID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return s.ProvisionProfile(ctx, userID, departmentID, phone, position)
}

// DeleteIdentity removes a user and cascades its profile. Users still
// referenced by tasks as assigner or assignee are protected.
func (s *Service) DeleteIdentity(ctx context.Context, userID id.UserID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if s.taskRefs != nil {
		referenced, err := s.taskRefs.IsUserReferenced(ctx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check task references")
		}
		if referenced {
			return dErrors.New(dErrors.CodeConflict, "user is referenced by tasks and cannot be deleted")
		}
	}

	// Profile first so memory stores match the postgres cascade.
	if err := s.profiles.Delete(ctx, userID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete profile")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrProtected) {
			return dErrors.New(dErrors.CodeConflict, "user is referenced by tasks and cannot be deleted")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionIdentityDeleted,
		ActorID:   requestcontext.ActorID(ctx),
		Subject:   userID.String(),
		RequestID: requestcontext.RequestID(ctx),
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}
