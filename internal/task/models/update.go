package models

import (
	"time"

	id "worktrack/pkg/domain"
)

// Update is one progress ledger entry. Entries are append-only: never
// edited, never deleted while the parent task lives.
type Update struct {
	ID        id.UpdateID `json:"id"`
	TaskID    id.TaskID   `json:"task_id"`
	UserID    id.UserID   `json:"user_id"`
	Content   string      `json:"content,omitempty"`
	Progress  int         `json:"progress"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUpdate validates and constructs a ledger entry.
func NewUpdate(updateID id.UpdateID, taskID id.TaskID, userID id.UserID, progress int, content string, now time.Time) (*Update, error) {
	if err := ValidateProgress(progress); err != nil {
		return nil, err
	}
	return &Update{
		ID:        updateID,
		TaskID:    taskID,
		UserID:    userID,
		Content:   content,
		Progress:  progress,
		CreatedAt: now,
	}, nil
}
