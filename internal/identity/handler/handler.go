// Package handler wires the identity admin endpoints to the identity
// service. The router mounts these behind the admin token middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"worktrack/internal/identity/models"
	"worktrack/internal/identity/service"
	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
	"worktrack/pkg/platform/httputil"
	"worktrack/pkg/requestcontext"
)

// Service defines the interface for identity provisioning operations.
type Service interface {
	CreateIdentity(ctx context.Context, input service.CreateIdentityInput) (*models.User, error)
	UpdateProfile(ctx context.Context, userID id.UserID, departmentID *id.DepartmentID, phone, position string) (*models.Profile, error)
	DeleteIdentity(ctx context.Context, userID id.UserID) error
}

// Handler wires identity admin endpoints to the identity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an identity handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts identity admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Put("/{userID}/profile", h.HandleUpdateProfile)
		r.Delete("/{userID}", h.HandleDelete)
	})
}

// CreateUserRequest is the HTTP request body for POST /users.
type CreateUserRequest struct {
	Username     string   `json:"username"`
	IsSuperuser  bool     `json:"is_superuser"`
	IsStaff      bool     `json:"is_staff"`
	RoleNames    []string `json:"role_names"`
	DepartmentID string   `json:"department_id"`
	Phone        string   `json:"phone"`
	Position     string   `json:"position"`

	parsed service.CreateIdentityInput
}

// Validate validates and parses the request.
func (r *CreateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}

	input := service.CreateIdentityInput{
		Username:    r.Username,
		IsSuperuser: r.IsSuperuser,
		IsStaff:     r.IsStaff,
		RoleNames:   r.RoleNames,
		Phone:       r.Phone,
		Position:    r.Position,
	}
	if r.DepartmentID != "" {
		dept, err := id.ParseDepartmentID(r.DepartmentID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "department_id must be a valid department id")
		}
		input.DepartmentID = &dept
	}

	r.parsed = input
	return nil
}

// ParsedInput returns the validated provisioning input.
func (r *CreateUserRequest) ParsedInput() service.CreateIdentityInput {
	return r.parsed
}

// UpdateProfileRequest is the HTTP request body for PUT /users/{userID}/profile.
type UpdateProfileRequest struct {
	DepartmentID string `json:"department_id"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`

	parsedDepartment *id.DepartmentID
}

// Validate validates and parses the request.
func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.DepartmentID != "" {
		dept, err := id.ParseDepartmentID(r.DepartmentID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "department_id must be a valid department id")
		}
		r.parsedDepartment = &dept
	}
	return nil
}

// UserResponse is the HTTP representation of a provisioned user.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	IsSuperuser bool      `json:"is_superuser"`
	IsStaff     bool      `json:"is_staff"`
	RoleNames   []string  `json:"role_names,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfileResponse is the HTTP representation of a profile.
type ProfileResponse struct {
	UserID       string `json:"user_id"`
	DepartmentID string `json:"department_id,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Position     string `json:"position,omitempty"`
}

// FromUser converts a user to its HTTP representation.
func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		IsSuperuser: u.IsSuperuser,
		IsStaff:     u.IsStaff,
		RoleNames:   u.RoleNames,
		CreatedAt:   u.CreatedAt,
	}
}

// FromProfile converts a profile to its HTTP representation.
func FromProfile(p *models.Profile) ProfileResponse {
	resp := ProfileResponse{
		UserID:   p.UserID.String(),
		Phone:    p.Phone,
		Position: p.Position,
	}
	if p.DepartmentID != nil {
		resp.DepartmentID = p.DepartmentID.String()
	}
	return resp
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, false
	}
	return userID, true
}

// HandleCreate handles POST /users requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.CreateIdentity(ctx, req.ParsedInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity provisioned",
		"request_id", requestID,
		"user_id", user.ID,
		"username", user.Username,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromUser(user))
}

// HandleUpdateProfile handles PUT /users/{userID}/profile requests.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.UpdateProfile(ctx, userID, req.parsedDepartment, req.Phone, req.Position)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}

// HandleDelete handles DELETE /users/{userID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteIdentity(ctx, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity deleted",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
	)
	w.WriteHeader(http.StatusNoContent)
}
