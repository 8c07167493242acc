// Package models defines the identity-side entities: users as supplied by
// the identity provider, their task-tracking profiles, and named roles
// bundling capabilities.
package models

import (
	"strings"
	"time"

	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
)

// Capability names checked by the authorization engine.
const (
	// CapabilityApprove allows approving task completion and posting
	// manager feedback.
	CapabilityApprove = "can_approve"
	// CapabilityViewAll allows listing tasks across all departments.
	CapabilityViewAll = "view_all_tasks"
)

// User mirrors the identity provider's record: who the person is plus the
// coarse role flags. Capabilities come from the roles attached to the user.
type User struct {
	ID          id.UserID `json:"id"`
	Username    string    `json:"username"`
	IsSuperuser bool      `json:"is_superuser"`
	IsStaff     bool      `json:"is_staff"`
	RoleNames   []string  `json:"role_names"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser validates and constructs a User.
func NewUser(userID id.UserID, username string, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if len(username) > 150 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username must be 150 characters or less")
	}
	return &User{
		ID:        userID,
		Username:  username,
		CreatedAt: now,
	}, nil
}

// Role is a named bundle of capabilities. Roles are provisioned once by the
// bootstrap routine and referenced by name from users.
type Role struct {
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

// Profile is the task-tracking profile attached 1:1 to a user. Created
// explicitly by the provisioning workflow, deleted with the identity.
type Profile struct {
	UserID       id.UserID        `json:"user_id"`
	DepartmentID *id.DepartmentID `json:"department_id,omitempty"`
	Phone        string           `json:"phone,omitempty"`
	Position     string           `json:"position,omitempty"`
}

// Actor is a user resolved for authorization: role flags, the union of the
// user's role capabilities, and the profile with department membership.
// It is the identity contract the task engine's predicates evaluate.
type Actor struct {
	ID           id.UserID
	Username     string
	IsSuperuser  bool
	IsStaff      bool
	capabilities map[string]struct{}
	Profile      *Profile
}

// NewActor assembles an Actor from its parts.
func NewActor(user *User, capabilities []string, profile *Profile) *Actor {
	caps := make(map[string]struct{}, len(capabilities))
	for _, c := range capabilities {
		caps[c] = struct{}{}
	}
	return &Actor{
		ID:           user.ID,
		Username:     user.Username,
		IsSuperuser:  user.IsSuperuser,
		IsStaff:      user.IsStaff,
		capabilities: caps,
		Profile:      profile,
	}
}

// HasCapability reports whether the actor holds the named capability.
// Superusers implicitly hold every capability.
func (a *Actor) HasCapability(name string) bool {
	if a.IsSuperuser {
		return true
	}
	_, ok := a.capabilities[name]
	return ok
}

// DepartmentID returns the actor's department membership, if any.
func (a *Actor) DepartmentID() (id.DepartmentID, bool) {
	if a.Profile == nil || a.Profile.DepartmentID == nil {
		return id.DepartmentID{}, false
	}
	return *a.Profile.DepartmentID, true
}
