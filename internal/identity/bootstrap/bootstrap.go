// Package bootstrap seeds the default roles.
//
// This is an administrative provisioning routine, not part of the task
// engine: it runs once (or idempotently on startup behind a flag) and
// writes the canonical role-to-capability mapping.
package bootstrap

import (
	"context"
	"fmt"

	"worktrack/internal/identity/models"
	"worktrack/internal/identity/service"
)

// Admins hold every capability through the superuser flag; the admin role
// exists so non-superuser operators can be granted the same surface.
var defaultRoles = []models.Role{
	{
		Name:         "admin",
		Capabilities: []string{models.CapabilityApprove, models.CapabilityViewAll},
	},
	{
		Name:         "manager",
		Capabilities: []string{models.CapabilityApprove, models.CapabilityViewAll},
	},
	{
		Name:         "employee",
		Capabilities: []string{},
	},
}

// EnsureRoles upserts the default role set. Re-running refreshes the
// capability lists to the canonical values.
func EnsureRoles(ctx context.Context, roles service.RoleStore) error {
	for i := range defaultRoles {
		role := defaultRoles[i]
		if err := roles.Save(ctx, &role); err != nil {
			return fmt.Errorf("seed role %q: %w", role.Name, err)
		}
	}
	return nil
}
