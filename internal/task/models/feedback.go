package models

import (
	"strings"
	"time"

	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
)

// Feedback is append-only manager commentary on a task. It has no effect
// on the status machine beyond touching the task's UpdatedAt.
type Feedback struct {
	ID        id.FeedbackID `json:"id"`
	TaskID    id.TaskID     `json:"task_id"`
	ManagerID id.UserID     `json:"manager_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewFeedback validates and constructs a feedback entry.
func NewFeedback(feedbackID id.FeedbackID, taskID id.TaskID, managerID id.UserID, content string, now time.Time) (*Feedback, error) {
	if strings.TrimSpace(content) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "feedback content cannot be empty")
	}
	return &Feedback{
		ID:        feedbackID,
		TaskID:    taskID,
		ManagerID: managerID,
		Content:   content,
		CreatedAt: now,
	}, nil
}
