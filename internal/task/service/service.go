// Package service orchestrates the task lifecycle: creation, edits, the
// progress ledger with its status projection, approval, feedback, and the
// visibility-scoped listings.
//
// Every operation resolves authorization through internal/task/policy
// before mutating or returning anything. The ledger append and the task
// projection update share one StoreTx unit so they never diverge.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	departmentmodels "worktrack/internal/department/models"
	identitymodels "worktrack/internal/identity/models"
	"worktrack/internal/task/metrics"
	"worktrack/internal/task/models"
	"worktrack/internal/task/policy"
	taskstore "worktrack/internal/task/store/task"
	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
	audit "worktrack/pkg/platform/audit"
	"worktrack/pkg/platform/sentinel"
	"worktrack/pkg/requestcontext"
)

type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, taskID id.TaskID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	UpdateFields(ctx context.Context, task *models.Task, fields []string) error
	Delete(ctx context.Context, taskID id.TaskID) error
	List(ctx context.Context, filter taskstore.ListFilter) ([]*models.Task, error)
	IsUserReferenced(ctx context.Context, userID id.UserID) (bool, error)
}

type UpdateStore interface {
	Append(ctx context.Context, update *models.Update) error
	ListByTask(ctx context.Context, taskID id.TaskID) ([]*models.Update, error)
	DeleteByTask(ctx context.Context, taskID id.TaskID) error
}

type FeedbackStore interface {
	Append(ctx context.Context, feedback *models.Feedback) error
	ListByTask(ctx context.Context, taskID id.TaskID) ([]*models.Feedback, error)
	DeleteByTask(ctx context.Context, taskID id.TaskID) error
}

// IdentityDirectory resolves identities referenced by tasks. The task
// service only needs existence checks; the Actor view is a convenient
// carrier for them.
type IdentityDirectory interface {
	ResolveActor(ctx context.Context, userID id.UserID) (*identitymodels.Actor, error)
}

// DepartmentDirectory resolves departments referenced by tasks.
type DepartmentDirectory interface {
	Get(ctx context.Context, deptID id.DepartmentID) (*departmentmodels.Department, error)
}

// Service orchestrates task lifecycle operations.
type Service struct {
	tasks       TaskStore
	updates     UpdateStore
	feedbacks   FeedbackStore
	tx          StoreTx
	identities  IdentityDirectory
	departments DepartmentDirectory
	logger      *slog.Logger
	audit       audit.Publisher
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithIdentityDirectory(identities IdentityDirectory) Option {
	return func(s *Service) { s.identities = identities }
}

func WithDepartmentDirectory(departments DepartmentDirectory) Option {
	return func(s *Service) { s.departments = departments }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the task service. tx must pair the same logical stores
// passed as tasks and updates.
func New(tasks TaskStore, updates UpdateStore, feedbacks FeedbackStore, tx StoreTx, opts ...Option) *Service {
	s := &Service{tasks: tasks, updates: updates, feedbacks: feedbacks, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTaskInput carries the caller-supplied task fields. Status is
// optional; when present it seeds the task directly except that DONE
// requires the approve capability and is otherwise demoted to PENDING.
type CreateTaskInput struct {
	Title          string
	Content        string
	Priority       models.Priority
	AssigneeID     id.UserID
	DepartmentID   *id.DepartmentID
	SupporterIDs   []id.UserID
	Deadline       *time.Time
	EstimatedHours *int
	Progress       int
	Status         models.Status
}

// CreateTask creates a task assigned by the actor. Non-approver creators
// get the task pinned to their own department regardless of the requested
// one; approvers may target any existing department.
func (s *Service) CreateTask(ctx context.Context, actor *identitymodels.Actor, input CreateTaskInput) (*models.Task, error) {
	now := requestcontext.Now(ctx)

	if err := models.ValidateProgress(input.Progress); err != nil {
		return nil, err
	}
	task, err := models.NewTask(id.NewTaskID(), input.Title, input.Content, input.Priority, actor.ID, input.AssigneeID, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.requireIdentity(ctx, input.AssigneeID, "assignee"); err != nil {
		return nil, err
	}

	if policy.IsManager(actor) {
		if input.DepartmentID != nil {
			if err := s.requireDepartment(ctx, *input.DepartmentID); err != nil {
				return nil, err
			}
			task.DepartmentID = input.DepartmentID
		}
	} else {
		dept, ok := actor.DepartmentID()
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "creator has no department to assign the task to")
		}
		task.DepartmentID = &dept
	}

	task.Supporters = append([]id.UserID(nil), input.SupporterIDs...)
	task.Deadline = input.Deadline
	task.EstimatedHours = input.EstimatedHours

	if input.Progress > 0 {
		task.ApplyProgress(input.Progress, now)
	}
	if input.Status != "" {
		if !input.Status.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown status")
		}
		if input.Status == models.StatusDone {
			if policy.IsApprover(actor) {
				task.Approve(actor.ID, now)
			} else {
				task.Status = models.StatusPending
			}
		} else {
			task.Status = input.Status
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "task already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create task")
	}

	if s.metrics != nil {
		s.metrics.TasksCreated.Inc()
	}
	s.emit(ctx, actor, audit.ActionTaskCreated, task.ID.String(), "")
	return task, nil
}

// GetTask loads a task the actor is allowed to see.
func (s *Service) GetTask(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, task) {
		return nil, s.deny(ctx, actor, "view", task.ID)
	}
	return task, nil
}

// EditTaskInput carries partial edits. Nil pointers leave the field as is.
type EditTaskInput struct {
	Title          *string
	Content        *string
	Priority       *models.Priority
	Status         *models.Status
	DepartmentID   *id.DepartmentID
	SupporterIDs   *[]id.UserID
	EstimatedHours *int
}

// EditTask applies direct field edits. Only approvers may move the
// department or set DONE; a DONE request from the creator is demoted to
// PENDING. An approver moving a DONE task to another status reopens it,
// clearing the approval stamp.
func (s *Service) EditTask(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID, input EditTaskInput) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEdit(actor, task) {
		return nil, s.deny(ctx, actor, "edit", task.ID)
	}

	if input.Title != nil {
		title, err := models.ValidateTitle(*input.Title)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		task.Title = title
	}
	if input.Content != nil {
		task.Content = *input.Content
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown priority")
		}
		task.Priority = *input.Priority
	}
	if input.DepartmentID != nil && policy.IsApprover(actor) {
		if err := s.requireDepartment(ctx, *input.DepartmentID); err != nil {
			return nil, err
		}
		task.DepartmentID = input.DepartmentID
	}
	if input.SupporterIDs != nil {
		task.Supporters = append([]id.UserID(nil), (*input.SupporterIDs)...)
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = input.EstimatedHours
	}

	now := requestcontext.Now(ctx)
	if input.Status != nil {
		if err := s.applyStatusEdit(task, actor, *input.Status, now); err != nil {
			return nil, err
		}
	}
	task.UpdatedAt = now

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update task")
	}

	s.emit(ctx, actor, audit.ActionTaskEdited, task.ID.String(), "")
	return task, nil
}

// applyStatusEdit handles the direct status edit path. The ledger never
// produces DONE; here DONE is allowed for approvers only and records the
// approval stamp through the same transition as the approve operation.
func (s *Service) applyStatusEdit(task *models.Task, actor *identitymodels.Actor, status models.Status, now time.Time) error {
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	if status == models.StatusDone {
		if !policy.IsApprover(actor) {
			task.Status = models.StatusPending
			return nil
		}
		task.Approve(actor.ID, now)
		return nil
	}
	if task.Status == models.StatusDone {
		// Explicit reopen by an approver. CanEdit already restricted the
		// DONE case to approvers.
		task.Approver = nil
		task.ApprovedAt = nil
	}
	task.Status = status
	return nil
}

// DeleteTask removes a task with its ledger and feedback.
func (s *Service) DeleteTask(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !policy.CanDelete(actor, task) {
		return s.deny(ctx, actor, "delete", task.ID)
	}

	// Children first so memory stores match the postgres cascade.
	if err := s.updates.DeleteByTask(ctx, taskID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete task updates")
	}
	if err := s.feedbacks.DeleteByTask(ctx, taskID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete task feedback")
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete task")
	}

	s.emit(ctx, actor, audit.ActionTaskDeleted, taskID.String(), "")
	return nil
}

// RecordProgress appends a ledger entry and projects the new progress onto
// the task in one transaction. The task is rewritten only when the
// projection actually changes it; the ledger row is appended regardless.
func (s *Service) RecordProgress(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID, progress int, content string) (*models.Update, error) {
	if err := models.ValidateProgress(progress); err != nil {
		return nil, err
	}
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateProgress(actor, task) {
		return nil, s.deny(ctx, actor, "update_progress", task.ID)
	}

	now := requestcontext.Now(ctx)
	entry, err := models.NewUpdate(id.NewUpdateID(), taskID, actor.ID, progress, content, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(tasks TaskStore, updates UpdateStore) error {
		current, err := tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := updates.Append(ctx, entry); err != nil {
			return err
		}
		if changed := current.ApplyProgress(progress, now); len(changed) > 0 {
			return tasks.UpdateFields(ctx, current, changed)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record progress")
	}

	if s.metrics != nil {
		s.metrics.ProgressRecords.Inc()
	}
	s.emit(ctx, actor, audit.ActionProgressRecorded, taskID.String(), fmt.Sprintf("progress=%d", progress))
	return entry, nil
}

// Approve transitions the task to DONE. Only approvers; idempotent on the
// approval timestamp.
func (s *Service) Approve(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.IsApprover(actor) {
		return nil, s.deny(ctx, actor, "approve", task.ID)
	}

	changed := task.Approve(actor.ID, requestcontext.Now(ctx))
	if len(changed) > 0 {
		if err := s.tasks.UpdateFields(ctx, task, changed); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve task")
		}
		if s.metrics != nil {
			s.metrics.TasksApproved.Inc()
		}
	}

	s.emit(ctx, actor, audit.ActionTaskApproved, task.ID.String(), "")
	return task, nil
}

// AddFeedback appends manager commentary. No status effect; the task's
// UpdatedAt is touched so listings surface the activity.
func (s *Service) AddFeedback(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID, content string) (*models.Feedback, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.IsApprover(actor) {
		return nil, s.deny(ctx, actor, "add_feedback", task.ID)
	}

	now := requestcontext.Now(ctx)
	feedback, err := models.NewFeedback(id.NewFeedbackID(), taskID, actor.ID, content, now)
	if err != nil {
		return nil, err
	}
	if err := s.feedbacks.Append(ctx, feedback); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add feedback")
	}

	task.UpdatedAt = now
	if err := s.tasks.UpdateFields(ctx, task, []string{models.FieldUpdatedAt}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to touch task")
	}

	s.emit(ctx, actor, audit.ActionFeedbackAdded, taskID.String(), "")
	return feedback, nil
}

// SetDeadline replaces or clears the deadline. Allowed for approver,
// creator, or assignee, regardless of DONE status.
func (s *Service) SetDeadline(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID, deadline *time.Time) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSetDeadline(actor, task) {
		return nil, s.deny(ctx, actor, "set_deadline", task.ID)
	}

	changed := task.SetDeadline(deadline, requestcontext.Now(ctx))
	if err := s.tasks.UpdateFields(ctx, task, changed); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to set deadline")
	}

	s.emit(ctx, actor, audit.ActionDeadlineChanged, task.ID.String(), "")
	return task, nil
}

// Scope names the breadth of a listing request.
type Scope string

const (
	// ScopeAll lists across all departments. Requires broad visibility.
	ScopeAll Scope = "all"
	// ScopeDepartment lists the actor's own department.
	ScopeDepartment Scope = "department"
	// ScopeAssigned lists tasks assigned to the actor.
	ScopeAssigned Scope = "assigned"
)

// ListInput narrows a listing. An empty scope means ScopeDepartment.
type ListInput struct {
	Scope  Scope
	Status *models.Status
}

// ListTasks returns tasks visible at the effective scope, newest-first.
// A scope the actor is not entitled to is silently narrowed, never
// rejected: all falls back to the actor's department, and department falls
// back to assigned-only when the actor has no department.
func (s *Service) ListTasks(ctx context.Context, actor *identitymodels.Actor, input ListInput) ([]*models.Task, error) {
	requested := input.Scope
	if requested == "" {
		requested = ScopeDepartment
	}

	effective := requested
	if effective == ScopeAll && !policy.CanViewAll(actor) {
		effective = ScopeDepartment
	}

	filter := taskstore.ListFilter{Status: input.Status}
	switch effective {
	case ScopeAll:
	case ScopeDepartment:
		if dept, ok := actor.DepartmentID(); ok {
			filter.DepartmentID = &dept
		} else {
			effective = ScopeAssigned
			assignee := actor.ID
			filter.AssigneeID = &assignee
		}
	case ScopeAssigned:
		assignee := actor.ID
		filter.AssigneeID = &assignee
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "unknown scope")
	}

	if effective != requested {
		if s.metrics != nil {
			s.metrics.ScopeDowngrades.Inc()
		}
		s.emit(ctx, actor, audit.ActionListingScopeDowngraded, "",
			fmt.Sprintf("scope=%s->%s", requested, effective))
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tasks")
	}
	return tasks, nil
}

// History bundles a task's ledger entries and feedback, both newest-first.
type History struct {
	Updates   []*models.Update   `json:"updates"`
	Feedbacks []*models.Feedback `json:"feedbacks"`
}

// ListHistory returns the progress ledger and feedback for a task. Gated
// by the update-progress predicate: the people working the task see its
// history.
func (s *Service) ListHistory(ctx context.Context, actor *identitymodels.Actor, taskID id.TaskID) (*History, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateProgress(actor, task) {
		return nil, s.deny(ctx, actor, "list_history", task.ID)
	}

	updates, err := s.updates.ListByTask(ctx, taskID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list task updates")
	}
	feedbacks, err := s.feedbacks.ListByTask(ctx, taskID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list task feedback")
	}
	return &History{Updates: updates, Feedbacks: feedbacks}, nil
}

// IsUserReferenced reports whether the user is an assigner or assignee on
// any task. Exposed for the identity deletion protect check.
func (s *Service) IsUserReferenced(ctx context.Context, userID id.UserID) (bool, error) {
	return s.tasks.IsUserReferenced(ctx, userID)
}

func (s *Service) findTask(ctx context.Context, taskID id.TaskID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load task")
	}
	return task, nil
}

func (s *Service) requireIdentity(ctx context.Context, userID id.UserID, field string) error {
	if s.identities == nil {
		return nil
	}
	if _, err := s.identities.ResolveActor(ctx, userID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "%s not found", field)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve "+field)
	}
	return nil
}

func (s *Service) requireDepartment(ctx context.Context, deptID id.DepartmentID) error {
	if s.departments == nil {
		return nil
	}
	dept, err := s.departments.Get(ctx, deptID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "department not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve department")
	}
	if !dept.IsActive {
		return dErrors.New(dErrors.CodeValidation, "department is not active")
	}
	return nil
}

// deny records the refusal and returns the Forbidden error every denied
// operation surfaces. No partial mutation precedes a deny.
func (s *Service) deny(ctx context.Context, actor *identitymodels.Actor, operation string, taskID id.TaskID) error {
	if s.metrics != nil {
		s.metrics.DeniedTotal.WithLabelValues(operation).Inc()
	}
	s.emit(ctx, actor, audit.ActionAuthorizationDenied, taskID.String(), "operation="+operation)
	return dErrors.New(dErrors.CodeForbidden, "not allowed to "+operation+" this task")
}

func (s *Service) emit(ctx context.Context, actor *identitymodels.Actor, action audit.Action, subject, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		ActorID:   actor.ID,
		Subject:   subject,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}
