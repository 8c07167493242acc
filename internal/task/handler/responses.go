package handler

import (
	"time"

	"worktrack/internal/task/models"
	"worktrack/internal/task/service"
)

// TaskResponse is the HTTP representation of a task. Overdue fields are
// computed against the request-scoped clock.
type TaskResponse struct {
	ID                string     `json:"id"`
	DepartmentID      string     `json:"department_id,omitempty"`
	Title             string     `json:"title"`
	Content           string     `json:"content,omitempty"`
	Priority          string     `json:"priority"`
	AssignedBy        string     `json:"assigned_by"`
	Assignee          string     `json:"assignee"`
	Supporters        []string   `json:"supporters,omitempty"`
	Progress          int        `json:"progress"`
	Status            string     `json:"status"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	EstimatedHours    *int       `json:"estimated_hours,omitempty"`
	Approver          string     `json:"approver,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	Overdue           bool       `json:"overdue"`
	DaysUntilDeadline *int       `json:"days_until_deadline,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// FromTask converts a task to its HTTP representation.
func FromTask(t *models.Task, now time.Time) TaskResponse {
	resp := TaskResponse{
		ID:         t.ID.String(),
		Title:      t.Title,
		Content:    t.Content,
		Priority:   string(t.Priority),
		AssignedBy: t.AssignedBy.String(),
		Assignee:   t.Assignee.String(),
		Progress:   t.Progress,
		Status:     string(t.Status),
		Deadline:   t.Deadline,
		ApprovedAt: t.ApprovedAt,
		Overdue:    t.IsOverdue(now),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.DepartmentID != nil {
		resp.DepartmentID = t.DepartmentID.String()
	}
	if t.Approver != nil {
		resp.Approver = t.Approver.String()
	}
	if t.EstimatedHours != nil {
		hours := *t.EstimatedHours
		resp.EstimatedHours = &hours
	}
	for _, s := range t.Supporters {
		resp.Supporters = append(resp.Supporters, s.String())
	}
	if days, ok := t.DaysUntilDeadline(now); ok {
		resp.DaysUntilDeadline = &days
	}
	return resp
}

// TaskListResponse wraps a listing.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// FromTasks converts a listing to its HTTP representation.
func FromTasks(tasks []*models.Task, now time.Time) TaskListResponse {
	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, FromTask(t, now))
	}
	return resp
}

// UpdateResponse is the HTTP representation of a ledger entry.
type UpdateResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content,omitempty"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// FromUpdate converts a ledger entry to its HTTP representation.
func FromUpdate(u *models.Update) UpdateResponse {
	return UpdateResponse{
		ID:        u.ID.String(),
		TaskID:    u.TaskID.String(),
		UserID:    u.UserID.String(),
		Content:   u.Content,
		Progress:  u.Progress,
		CreatedAt: u.CreatedAt,
	}
}

// FeedbackResponse is the HTTP representation of a feedback entry.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	ManagerID string    `json:"manager_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FromFeedback converts a feedback entry to its HTTP representation.
func FromFeedback(f *models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID.String(),
		TaskID:    f.TaskID.String(),
		ManagerID: f.ManagerID.String(),
		Content:   f.Content,
		CreatedAt: f.CreatedAt,
	}
}

// HistoryResponse bundles a task's ledger and feedback.
type HistoryResponse struct {
	Updates   []UpdateResponse   `json:"updates"`
	Feedbacks []FeedbackResponse `json:"feedbacks"`
}

// FromHistory converts a history listing to its HTTP representation.
func FromHistory(h *service.History) HistoryResponse {
	resp := HistoryResponse{
		Updates:   make([]UpdateResponse, 0, len(h.Updates)),
		Feedbacks: make([]FeedbackResponse, 0, len(h.Feedbacks)),
	}
	for _, u := range h.Updates {
		resp.Updates = append(resp.Updates, FromUpdate(u))
	}
	for _, f := range h.Feedbacks {
		resp.Feedbacks = append(resp.Feedbacks, FromFeedback(f))
	}
	return resp
}
