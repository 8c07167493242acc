// Package models defines the Task aggregate, its progress ledger entries,
// and manager feedback.
package models

import (
	"strings"
	"time"

	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
)

// Task is the central entity.
//
// Invariants:
//   - Progress is always within [0, 100]
//   - ApprovedAt is set if and only if Status is DONE and Approver is set;
//     it is written exactly once, on the transition into DONE, and never
//     cleared automatically
//   - DONE does not require Progress == 100: approval is a judgment call
//   - AssignedBy and Assignee reference valid identities and are never
//     reassigned after creation
//
// Status is driven by the progress ledger (see ApplyProgress) except for
// the approve transition and the administrative CANCELLED edit.
type Task struct {
	ID             id.TaskID        `json:"id"`
	DepartmentID   *id.DepartmentID `json:"department_id,omitempty"`
	Title          string           `json:"title"`
	Content        string           `json:"content,omitempty"`
	Priority       Priority         `json:"priority"`
	AssignedBy     id.UserID        `json:"assigned_by"`
	Assignee       id.UserID        `json:"assignee"`
	Supporters     []id.UserID      `json:"supporters,omitempty"`
	Progress       int              `json:"progress"`
	Status         Status           `json:"status"`
	Deadline       *time.Time       `json:"deadline,omitempty"`
	EstimatedHours *int             `json:"estimated_hours,omitempty"`
	Approver       *id.UserID       `json:"approver,omitempty"`
	ApprovedAt     *time.Time       `json:"approved_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Field names used when persisting partial updates. Only changed fields
// are written, so concurrent readers observe progress field by field.
const (
	FieldProgress   = "progress"
	FieldStatus     = "status"
	FieldDeadline   = "deadline"
	FieldApprover   = "approver"
	FieldApprovedAt = "approved_at"
	FieldUpdatedAt  = "updated_at"
)

// ValidateTitle trims and bounds-checks a task title.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "task title cannot be empty")
	}
	if len(title) > 255 {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "task title must be 255 characters or less")
	}
	return title, nil
}

// NewTask validates and constructs a Task in the NEW state.
func NewTask(taskID id.TaskID, title, content string, priority Priority, assignedBy, assignee id.UserID, now time.Time) (*Task, error) {
	title, err := ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown priority")
	}
	if assignedBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "task requires an assigner")
	}
	if assignee.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "task requires an assignee")
	}
	return &Task{
		ID:         taskID,
		Title:      title,
		Content:    content,
		Priority:   priority,
		AssignedBy: assignedBy,
		Assignee:   assignee,
		Progress:   0,
		Status:     StatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ApplyProgress projects a newly recorded progress value onto the task and
// returns the names of the fields that changed (empty when the task is
// already at that progress and status). Status is recomputed only while
// the task is not DONE: approval is sticky and only a direct status edit
// by an authorized actor reopens it.
func (t *Task) ApplyProgress(progress int, now time.Time) []string {
	var changed []string

	if t.Progress != progress {
		t.Progress = progress
		changed = append(changed, FieldProgress)
	}

	if t.Status != StatusDone {
		if next := StatusForProgress(progress); t.Status != next {
			t.Status = next
			changed = append(changed, FieldStatus)
		}
	}

	if len(changed) > 0 {
		t.UpdatedAt = now
		changed = append(changed, FieldUpdatedAt)
	}
	return changed
}

// Approve transitions the task into DONE, stamping the approver and the
// approval time. Approving an already approved task is a no-op on
// ApprovedAt: the original timestamp is preserved.
func (t *Task) Approve(approver id.UserID, now time.Time) []string {
	var changed []string

	if t.Status != StatusDone {
		t.Status = StatusDone
		changed = append(changed, FieldStatus)
	}
	if t.Approver == nil || *t.Approver != approver {
		t.Approver = &approver
		changed = append(changed, FieldApprover)
	}
	if t.ApprovedAt == nil {
		t.ApprovedAt = &now
		changed = append(changed, FieldApprovedAt)
	}

	if len(changed) > 0 {
		t.UpdatedAt = now
		changed = append(changed, FieldUpdatedAt)
	}
	return changed
}

// SetDeadline replaces the deadline (nil clears it).
func (t *Task) SetDeadline(deadline *time.Time, now time.Time) []string {
	t.Deadline = deadline
	t.UpdatedAt = now
	return []string{FieldDeadline, FieldUpdatedAt}
}

// IsOverdue reports whether the deadline has passed on a task that is
// neither done nor cancelled.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	if t.Status == StatusDone || t.Status == StatusCancelled {
		return false
	}
	return now.After(*t.Deadline)
}

// DaysUntilDeadline returns whole days until the deadline (negative when
// past), or false when no deadline is set.
func (t *Task) DaysUntilDeadline(now time.Time) (int, bool) {
	if t.Deadline == nil {
		return 0, false
	}
	return int(t.Deadline.Sub(now).Hours() / 24), true
}

// HasSupporter reports whether the user is on the supporter set.
func (t *Task) HasSupporter(userID id.UserID) bool {
	for _, s := range t.Supporters {
		if s == userID {
			return true
		}
	}
	return false
}

// ValidateProgress enforces the shared progress bound.
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return dErrors.New(dErrors.CodeValidation, "progress must be between 0 and 100")
	}
	return nil
}
