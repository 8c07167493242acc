// Package handler wires the task endpoints to the task service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	identitymodels "worktrack/internal/identity/models"
	"worktrack/internal/task/models"
	"worktrack/internal/task/service"
	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
	"worktrack/pkg/platform/httputil"
	"worktrack/pkg/requestcontext"
)

// Service defines the interface for task operations.
type Service interface {
	CreateTask(ctx context.Context, actor *identitymodels.Actor, input service.CreateTaskInput) (*models.Task, error)
	GetTask(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID) (*models.Task, error)
	EditTask(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID, input service.EditTaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID) error
	RecordProgress(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID, progress int, content string) (*models.Update, error)
	Approve(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID) (*models.Task, error)
	AddFeedback(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID, content string) (*models.Feedback, error)
	SetDeadline(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID, deadline *time.Time) (*models.Task, error)
	ListTasks(ctx context.Context, actor *identitymodels.Actor, input service.ListInput) ([]*models.Task, error)
	ListHistory(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID) (*service.History, error)
}

// ActorResolver loads the authorization view of the authenticated user.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID id.UserID) (*identitymodels.Actor, error)
}

// Handler wires task endpoints to the task service.
type Handler struct {
	service Service
	actors  ActorResolver
	logger  *slog.Logger
}

// New constructs a task handler with its dependencies.
func New(service Service, actors ActorResolver, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		actors:  actors,
		logger:  logger,
	}
}

// Register mounts task endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Route("/{taskID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleEdit)
			r.Delete("/", h.HandleDelete)
			r.Post("/progress", h.HandleProgress)
			r.Get("/updates", h.HandleHistory)
			r.Post("/approve", h.HandleApprove)
			r.Post("/feedback", h.HandleFeedback)
			r.Put("/deadline", h.HandleDeadline)
		})
	})
}

// actor resolves the authenticated actor or writes the error response.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*identitymodels.Actor, bool) {
	ctx := r.Context()
	userID := requestcontext.ActorID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return nil, false
	}
	actor, err := h.actors.ResolveActor(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "actor resolution failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "unknown identity"))
			return nil, false
		}
		httputil.WriteError(w, err)
		return nil, false
	}
	return actor, true
}

// taskID parses the path parameter or writes the error response.
func (h *Handler) taskID(w http.ResponseWriter, r *http.Request) (id.TaskID, bool) {
	taskID, err := id.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.TaskID{}, false
	}
	return taskID, true
}

// HandleCreate handles POST /tasks requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateTaskRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	task, err := h.service.CreateTask(ctx, actor, req.ParsedInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "task created",
		"request_id", requestID,
		"task_id", task.ID,
		"actor_id", actor.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromTask(task, requestcontext.Now(ctx)))
}

// HandleList handles GET /tasks requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	input := service.ListInput{
		Scope: service.Scope(strings.ToLower(r.URL.Query().Get("scope"))),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.Status(strings.ToUpper(raw))
		if !status.IsValid() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown status"))
			return
		}
		input.Status = &status
	}

	tasks, err := h.service.ListTasks(ctx, actor, input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTasks(tasks, requestcontext.Now(ctx)))
}

// HandleGet handles GET /tasks/{taskID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.GetTask(ctx, actor, taskID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTask(task, requestcontext.Now(ctx)))
}

// HandleEdit handles PUT /tasks/{taskID} requests.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EditTaskRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	task, err := h.service.EditTask(ctx, actor, taskID, req.ParsedInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "task edited",
		"request_id", requestID,
		"task_id", task.ID,
		"actor_id", actor.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromTask(task, requestcontext.Now(ctx)))
}

// HandleDelete handles DELETE /tasks/{taskID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(ctx, actor, taskID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "task deleted",
		"request_id", requestcontext.RequestID(ctx),
		"task_id", taskID,
		"actor_id", actor.ID,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleProgress handles POST /tasks/{taskID}/progress requests.
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProgressRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.RecordProgress(ctx, actor, taskID, req.Progress, req.Content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "progress recorded",
		"request_id", requestID,
		"task_id", taskID,
		"actor_id", actor.ID,
		"progress", req.Progress,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromUpdate(entry))
}

// HandleHistory handles GET /tasks/{taskID}/updates requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	history, err := h.service.ListHistory(ctx, actor, taskID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHistory(history))
}

// HandleApprove handles POST /tasks/{taskID}/approve requests.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Approve(ctx, actor, taskID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "task approved",
		"request_id", requestcontext.RequestID(ctx),
		"task_id", task.ID,
		"actor_id", actor.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromTask(task, requestcontext.Now(ctx)))
}

// HandleFeedback handles POST /tasks/{taskID}/feedback requests.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[FeedbackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	feedback, err := h.service.AddFeedback(ctx, actor, taskID, req.Content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromFeedback(feedback))
}

// HandleDeadline handles PUT /tasks/{taskID}/deadline requests.
func (h *Handler) HandleDeadline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DeadlineRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	task, err := h.service.SetDeadline(ctx, actor, taskID, req.ParsedDeadline())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTask(task, requestcontext.Now(ctx)))
}
