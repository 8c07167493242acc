package handler

import (
	"strings"
	"time"

	"worktrack/internal/task/models"
	"worktrack/internal/task/service"
	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
)

// CreateTaskRequest is the HTTP request body for POST /tasks.
type CreateTaskRequest struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Priority       string   `json:"priority"`
	AssigneeID     string   `json:"assignee_id"`
	DepartmentID   string   `json:"department_id"`
	SupporterIDs   []string `json:"supporter_ids"`
	Deadline       string   `json:"deadline"`
	EstimatedHours *int     `json:"estimated_hours"`
	Progress       int      `json:"progress"`
	Status         string   `json:"status"`

	parsed service.CreateTaskInput
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateTaskRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}

	assignee, err := id.ParseUserID(r.AssigneeID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "assignee_id must be a valid user id")
	}

	input := service.CreateTaskInput{
		Title:          r.Title,
		Content:        r.Content,
		AssigneeID:     assignee,
		EstimatedHours: r.EstimatedHours,
		Progress:       r.Progress,
	}

	if r.Priority != "" {
		priority := models.Priority(strings.ToUpper(r.Priority))
		if !priority.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "unknown priority")
		}
		input.Priority = priority
	}
	if r.Status != "" {
		status := models.Status(strings.ToUpper(r.Status))
		if !status.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "unknown status")
		}
		input.Status = status
	}
	if r.DepartmentID != "" {
		dept, err := id.ParseDepartmentID(r.DepartmentID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "department_id must be a valid department id")
		}
		input.DepartmentID = &dept
	}
	for _, raw := range r.SupporterIDs {
		supporter, err := id.ParseUserID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "supporter_ids must be valid user ids")
		}
		input.SupporterIDs = append(input.SupporterIDs, supporter)
	}
	if r.Deadline != "" {
		deadline, err := parseDeadline(r.Deadline)
		if err != nil {
			return err
		}
		input.Deadline = deadline
	}

	r.parsed = input
	return nil
}

// ParsedInput returns the validated creation input.
func (r *CreateTaskRequest) ParsedInput() service.CreateTaskInput {
	return r.parsed
}

// EditTaskRequest is the HTTP request body for PUT /tasks/{taskID}.
// Absent fields are left unchanged.
type EditTaskRequest struct {
	Title          *string   `json:"title"`
	Content        *string   `json:"content"`
	Priority       *string   `json:"priority"`
	Status         *string   `json:"status"`
	DepartmentID   *string   `json:"department_id"`
	SupporterIDs   *[]string `json:"supporter_ids"`
	EstimatedHours *int      `json:"estimated_hours"`

	parsed service.EditTaskInput
}

// Validate validates and parses the request.
func (r *EditTaskRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	input := service.EditTaskInput{
		Title:          r.Title,
		Content:        r.Content,
		EstimatedHours: r.EstimatedHours,
	}

	if r.Priority != nil {
		priority := models.Priority(strings.ToUpper(*r.Priority))
		if !priority.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "unknown priority")
		}
		input.Priority = &priority
	}
	if r.Status != nil {
		status := models.Status(strings.ToUpper(*r.Status))
		if !status.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "unknown status")
		}
		input.Status = &status
	}
	if r.DepartmentID != nil {
		dept, err := id.ParseDepartmentID(*r.DepartmentID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "department_id must be a valid department id")
		}
		input.DepartmentID = &dept
	}
	if r.SupporterIDs != nil {
		supporters := make([]id.UserID, 0, len(*r.SupporterIDs))
		for _, raw := range *r.SupporterIDs {
			supporter, err := id.ParseUserID(raw)
			if err != nil {
				return dErrors.New(dErrors.CodeValidation, "supporter_ids must be valid user ids")
			}
			supporters = append(supporters, supporter)
		}
		input.SupporterIDs = &supporters
	}

	r.parsed = input
	return nil
}

// ParsedInput returns the validated edit input.
func (r *EditTaskRequest) ParsedInput() service.EditTaskInput {
	return r.parsed
}

// ProgressRequest is the HTTP request body for POST /tasks/{taskID}/progress.
type ProgressRequest struct {
	Progress int    `json:"progress"`
	Content  string `json:"content"`
}

// Validate validates the request.
func (r *ProgressRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return models.ValidateProgress(r.Progress)
}

// FeedbackRequest is the HTTP request body for POST /tasks/{taskID}/feedback.
type FeedbackRequest struct {
	Content string `json:"content"`
}

// Validate validates the request.
func (r *FeedbackRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return dErrors.New(dErrors.CodeValidation, "content is required")
	}
	return nil
}

// DeadlineRequest is the HTTP request body for PUT /tasks/{taskID}/deadline.
// A null or empty deadline clears it.
type DeadlineRequest struct {
	Deadline string `json:"deadline"`

	parsed *time.Time
}

// Validate validates and parses the request.
func (r *DeadlineRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Deadline == "" {
		r.parsed = nil
		return nil
	}
	deadline, err := parseDeadline(r.Deadline)
	if err != nil {
		return err
	}
	r.parsed = deadline
	return nil
}

// ParsedDeadline returns the validated deadline, nil when clearing.
func (r *DeadlineRequest) ParsedDeadline() *time.Time {
	return r.parsed
}

func parseDeadline(raw string) (*time.Time, error) {
	deadline, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "deadline must be an RFC 3339 timestamp")
	}
	return &deadline, nil
}
