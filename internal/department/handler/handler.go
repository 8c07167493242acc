// Package handler wires the department admin endpoints to the registry
// service. The router mounts these behind the admin token middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"worktrack/internal/department/models"
	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
	"worktrack/pkg/platform/httputil"
	"worktrack/pkg/requestcontext"
)

// Service defines the interface for department registry operations.
type Service interface {
	Create(ctx context.Context, name, code, description string) (*models.Department, error)
	Get(ctx context.Context, deptID id.DepartmentID) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Deactivate(ctx context.Context, deptID id.DepartmentID) (*models.Department, error)
}

// Handler wires department endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a department handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts department endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{departmentID}", h.HandleGet)
		r.Post("/{departmentID}/deactivate", h.HandleDeactivate)
	})
}

// CreateDepartmentRequest is the HTTP request body for POST /departments.
type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Validate validates the request.
func (r *CreateDepartmentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// DepartmentResponse is the HTTP representation of a department.
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromDepartment converts a department to its HTTP representation.
func FromDepartment(d *models.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID.String(),
		Name:        d.Name,
		Code:        d.Code,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (h *Handler) departmentID(w http.ResponseWriter, r *http.Request) (id.DepartmentID, bool) {
	deptID, err := id.ParseDepartmentID(chi.URLParam(r, "departmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.DepartmentID{}, false
	}
	return deptID, true
}

// HandleCreate handles POST /departments requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateDepartmentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	dept, err := h.service.Create(ctx, req.Name, req.Code, req.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "department created",
		"request_id", requestID,
		"department_id", dept.ID,
		"name", dept.Name,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromDepartment(dept))
}

// HandleList handles GET /departments requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := make([]DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		resp = append(resp, FromDepartment(d))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]DepartmentResponse{"departments": resp})
}

// HandleGet handles GET /departments/{departmentID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	deptID, ok := h.departmentID(w, r)
	if !ok {
		return
	}
	dept, err := h.service.Get(r.Context(), deptID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDepartment(dept))
}

// HandleDeactivate handles POST /departments/{departmentID}/deactivate requests.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deptID, ok := h.departmentID(w, r)
	if !ok {
		return
	}
	dept, err := h.service.Deactivate(ctx, deptID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "department deactivated",
		"request_id", requestcontext.RequestID(ctx),
		"department_id", dept.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromDepartment(dept))
}
