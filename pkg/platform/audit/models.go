// Package audit captures key domain actions as transport-agnostic events.
//
// Services emit events through a Publisher; sinks (in-memory store, Kafka)
// decide persistence and fan-out. Audit emission is best-effort for this
// system: a failed emit is logged, it never fails the business operation.
package audit

import (
	"context"
	"time"

	id "worktrack/pkg/domain"
)

// Action names the audited domain action.
type Action string

const (
	ActionTaskCreated          Action = "task_created"
	ActionTaskEdited           Action = "task_edited"
	ActionTaskDeleted          Action = "task_deleted"
	ActionTaskApproved         Action = "task_approved"
	ActionProgressRecorded     Action = "progress_recorded"
	ActionFeedbackAdded        Action = "feedback_added"
	ActionDeadlineChanged      Action = "deadline_changed"
	ActionDepartmentCreated    Action = "department_created"
	ActionProfileProvisioned   Action = "profile_provisioned"
	ActionIdentityDeleted      Action = "identity_deleted"
	ActionAuthorizationDenied  Action = "authorization_denied"
	ActionListingScopeDowngraded Action = "listing_scope_downgraded"
)

// Event is emitted from domain logic. Keep it flat so sinks can encode it
// without knowledge of the entities involved.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	ActorID   id.UserID `json:"actor_id"`
	// Subject identifies the entity acted upon (task ID, department ID).
	Subject string `json:"subject,omitempty"`
	// Detail carries a short human-readable qualifier ("progress=75",
	// "scope=all->department").
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Publisher delivers events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists events for later inspection.
type Store interface {
	Append(ctx context.Context, event Event) error
}
