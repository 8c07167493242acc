package models

// Status is the task lifecycle state, stored as a short string code.
type Status string

const (
	// StatusNew marks a task with no progress recorded yet.
	StatusNew Status = "NEW"
	// StatusDoing marks a task with partial progress.
	StatusDoing Status = "DOING"
	// StatusPending marks a task at 100% awaiting manager approval.
	// Reaching full progress never completes a task by itself.
	StatusPending Status = "PENDING"
	// StatusDone marks an approved task. Only the explicit approve
	// operation reaches this state.
	StatusDone Status = "DONE"
	// StatusCancelled is an administrative side state, set by direct edit
	// rather than by the progress ledger.
	StatusCancelled Status = "CANCELLED"
)

// IsValid reports whether s is a known status code.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusDoing, StatusPending, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// StatusForProgress maps a recorded progress value onto the ledger-driven
// status. It never yields DONE: approval is a human judgment, decoupled
// from the percentage.
func StatusForProgress(progress int) Status {
	switch {
	case progress >= 100:
		return StatusPending
	case progress > 0:
		return StatusDoing
	default:
		return StatusNew
	}
}

// Priority is the task priority, stored as a short string code.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether p is a known priority code.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
