// Package policy is the authorization engine: pure predicates mapping
// (actor, task) onto allow/deny decisions.
//
// Every mutating or listing operation consults these predicates before
// executing; callers never re-implement the rules. The predicates are
// stateless and side-effect free, so they are trivially testable and safe
// to evaluate anywhere.
package policy

import (
	identity "worktrack/internal/identity/models"
	"worktrack/internal/task/models"
)

// IsApprover reports whether the actor may approve task completion:
// administrators and holders of the approve capability.
func IsApprover(actor *identity.Actor) bool {
	return actor.IsSuperuser || actor.HasCapability(identity.CapabilityApprove)
}

// IsManager reports whether the actor gets manager-level treatment in the
// wider views: superuser, staff, or approver.
func IsManager(actor *identity.Actor) bool {
	return actor.IsSuperuser || actor.IsStaff || actor.HasCapability(identity.CapabilityApprove)
}

// SameDepartment reports whether the actor's profile department equals the
// task's department. Both must be set; a missing department on either side
// denies.
func SameDepartment(actor *identity.Actor, task *models.Task) bool {
	actorDept, ok := actor.DepartmentID()
	if !ok || task.DepartmentID == nil {
		return false
	}
	return actorDept == *task.DepartmentID
}

// CanView reports whether the actor may see the task: admin, approver,
// creator, assignee, supporter, or department colleague. The disjuncts are
// commutative; order is just short-circuit convenience.
func CanView(actor *identity.Actor, task *models.Task) bool {
	if actor.IsSuperuser || IsApprover(actor) {
		return true
	}
	if task.AssignedBy == actor.ID || task.Assignee == actor.ID {
		return true
	}
	if task.HasSupporter(actor.ID) {
		return true
	}
	return SameDepartment(actor, task)
}

// CanEdit reports whether the actor may change the task's core fields:
// approver always, creator only while the task is not DONE.
func CanEdit(actor *identity.Actor, task *models.Task) bool {
	if IsApprover(actor) {
		return true
	}
	return task.AssignedBy == actor.ID && task.Status != models.StatusDone
}

// CanDelete applies the same rule as CanEdit: once DONE, only an approver
// may remove the task.
func CanDelete(actor *identity.Actor, task *models.Task) bool {
	return CanEdit(actor, task)
}

// CanUpdateProgress reports whether the actor may record progress: the
// assignee or an approver. The creator alone is not authorized.
func CanUpdateProgress(actor *identity.Actor, task *models.Task) bool {
	return task.Assignee == actor.ID || IsApprover(actor)
}

// CanSetDeadline is deliberately wider than CanEdit: approver, creator or
// assignee, regardless of DONE status.
func CanSetDeadline(actor *identity.Actor, task *models.Task) bool {
	return IsApprover(actor) || task.AssignedBy == actor.ID || task.Assignee == actor.ID
}

// CanViewAll reports whether the actor may list tasks across departments:
// the view-all capability, the approve capability, staff, or superuser.
func CanViewAll(actor *identity.Actor) bool {
	return actor.IsSuperuser ||
		actor.IsStaff ||
		actor.HasCapability(identity.CapabilityApprove) ||
		actor.HasCapability(identity.CapabilityViewAll)
}
