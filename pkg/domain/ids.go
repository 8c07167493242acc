// Package domain defines the typed identifiers shared across worktrack.
//
// Every entity gets its own UUID-backed type so the compiler rejects
// cross-entity mixups (passing a TaskID where a UserID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "worktrack/pkg/domain-errors"
)

type (
	// UserID identifies an identity supplied by the external provider.
	UserID uuid.UUID
	// TaskID identifies a task.
	TaskID uuid.UUID
	// DepartmentID identifies an organizational unit.
	DepartmentID uuid.UUID
	// UpdateID identifies a progress ledger entry.
	UpdateID uuid.UUID
	// FeedbackID identifies a manager feedback entry.
	FeedbackID uuid.UUID
)

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id TaskID) String() string       { return uuid.UUID(id).String() }
func (id DepartmentID) String() string { return uuid.UUID(id).String() }
func (id UpdateID) String() string     { return uuid.UUID(id).String() }
func (id FeedbackID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id DepartmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UpdateID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id FeedbackID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewTaskID returns a fresh random task ID.
func NewTaskID() TaskID { return TaskID(uuid.New()) }

// NewDepartmentID returns a fresh random department ID.
func NewDepartmentID() DepartmentID { return DepartmentID(uuid.New()) }

// NewUpdateID returns a fresh random ledger entry ID.
func NewUpdateID() UpdateID { return UpdateID(uuid.New()) }

// NewFeedbackID returns a fresh random feedback entry ID.
func NewFeedbackID() FeedbackID { return FeedbackID(uuid.New()) }

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Parsing happens at trust boundaries (HTTP, storage rows)
// so everything past them can assume well-formed identifiers.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID parses and validates a user ID string.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseTaskID parses and validates a task ID string.
func ParseTaskID(raw string) (TaskID, error) {
	parsed, err := parseUUID(raw, "task")
	if err != nil {
		return TaskID{}, err
	}
	return TaskID(parsed), nil
}

// ParseUpdateID parses and validates a ledger entry ID string.
func ParseUpdateID(raw string) (UpdateID, error) {
	parsed, err := parseUUID(raw, "update")
	if err != nil {
		return UpdateID{}, err
	}
	return UpdateID(parsed), nil
}

// ParseFeedbackID parses and validates a feedback entry ID string.
func ParseFeedbackID(raw string) (FeedbackID, error) {
	parsed, err := parseUUID(raw, "feedback")
	if err != nil {
		return FeedbackID{}, err
	}
	return FeedbackID(parsed), nil
}

// ParseDepartmentID parses and validates a department ID string.
func ParseDepartmentID(raw string) (DepartmentID, error) {
	parsed, err := parseUUID(raw, "department")
	if err != nil {
		return DepartmentID{}, err
	}
	return DepartmentID(parsed), nil
}
