// Package models defines the Department entity.
package models

import (
	"strings"
	"time"

	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
)

// Department is a flat organizational unit. Tasks and profiles hold a
// nullable reference to it; the registry owns the record.
//
// Invariants:
//   - Name is non-empty, at most 120 characters, unique (case-insensitive)
//   - Code, when present, is at most 30 characters and unique
type Department struct {
	ID          id.DepartmentID `json:"id"`
	Name        string          `json:"name"`
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// New validates and constructs a Department.
func New(deptID id.DepartmentID, name, code, description string, now time.Time) (*Department, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "department name cannot be empty")
	}
	if len(name) > 120 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "department name must be 120 characters or less")
	}
	if len(code) > 30 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "department code must be 30 characters or less")
	}
	return &Department{
		ID:          deptID,
		Name:        name,
		Code:        code,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Deactivate marks the department inactive. Existing task and profile
// references stay valid; new assignments should avoid inactive units.
func (d *Department) Deactivate(now time.Time) error {
	if !d.IsActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "department is already inactive")
	}
	d.IsActive = false
	d.UpdatedAt = now
	return nil
}
