package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	identity "worktrack/internal/identity/models"
	"worktrack/internal/task/models"
	id "worktrack/pkg/domain"
)

func actor(t *testing.T, opts ...func(*identity.User, *[]string, **identity.Profile)) *identity.Actor {
	t.Helper()
	user := &identity.User{ID: id.NewUserID(), Username: "actor"}
	var caps []string
	var profile *identity.Profile
	for _, opt := range opts {
		opt(user, &caps, &profile)
	}
	return identity.NewActor(user, caps, profile)
}

func superuser() func(*identity.User, *[]string, **identity.Profile) {
	return func(u *identity.User, _ *[]string, _ **identity.Profile) { u.IsSuperuser = true }
}

func staff() func(*identity.User, *[]string, **identity.Profile) {
	return func(u *identity.User, _ *[]string, _ **identity.Profile) { u.IsStaff = true }
}

func withCapability(name string) func(*identity.User, *[]string, **identity.Profile) {
	return func(_ *identity.User, caps *[]string, _ **identity.Profile) { *caps = append(*caps, name) }
}

func inDepartment(dept id.DepartmentID) func(*identity.User, *[]string, **identity.Profile) {
	return func(u *identity.User, _ *[]string, p **identity.Profile) {
		*p = &identity.Profile{UserID: u.ID, DepartmentID: &dept}
	}
}

func task(assignedBy, assignee id.UserID) *models.Task {
	return &models.Task{
		ID:         id.NewTaskID(),
		Title:      "fixture",
		AssignedBy: assignedBy,
		Assignee:   assignee,
		Status:     models.StatusNew,
	}
}

func TestIsApprover(t *testing.T) {
	assert.True(t, IsApprover(actor(t, superuser())))
	assert.True(t, IsApprover(actor(t, withCapability(identity.CapabilityApprove))))
	assert.False(t, IsApprover(actor(t, staff())))
	assert.False(t, IsApprover(actor(t)))
}

func TestSameDepartment(t *testing.T) {
	dept := id.NewDepartmentID()
	other := id.NewDepartmentID()

	tk := task(id.NewUserID(), id.NewUserID())
	tk.DepartmentID = &dept

	assert.True(t, SameDepartment(actor(t, inDepartment(dept)), tk))
	assert.False(t, SameDepartment(actor(t, inDepartment(other)), tk))
	assert.False(t, SameDepartment(actor(t), tk), "actor without department")

	tk.DepartmentID = nil
	assert.False(t, SameDepartment(actor(t, inDepartment(dept)), tk), "task without department")
}

func TestCanView(t *testing.T) {
	dept := id.NewDepartmentID()
	creator := actor(t, inDepartment(dept))
	assignee := actor(t)
	supporter := actor(t)

	tk := task(creator.ID, assignee.ID)
	tk.DepartmentID = &dept
	tk.Supporters = []id.UserID{supporter.ID}

	assert.True(t, CanView(actor(t, superuser()), tk))
	assert.True(t, CanView(actor(t, withCapability(identity.CapabilityApprove)), tk))
	assert.True(t, CanView(creator, tk))
	assert.True(t, CanView(assignee, tk))
	assert.True(t, CanView(supporter, tk))
	assert.True(t, CanView(actor(t, inDepartment(dept)), tk))
	assert.False(t, CanView(actor(t), tk))
	assert.False(t, CanView(actor(t, inDepartment(id.NewDepartmentID())), tk))
}

func TestCanEdit(t *testing.T) {
	creator := actor(t)
	assignee := actor(t)
	approver := actor(t, withCapability(identity.CapabilityApprove))

	tk := task(creator.ID, assignee.ID)

	assert.True(t, CanEdit(creator, tk))
	assert.True(t, CanEdit(approver, tk))
	assert.False(t, CanEdit(assignee, tk))

	tk.Status = models.StatusDone
	assert.False(t, CanEdit(creator, tk), "creator loses edit once DONE")
	assert.True(t, CanEdit(approver, tk))
}

// CanDelete must agree with CanEdit for every actor/task pairing.
func TestCanDeleteEqualsCanEdit(t *testing.T) {
	dept := id.NewDepartmentID()
	creator := actor(t, inDepartment(dept))
	assignee := actor(t)
	supporter := actor(t)

	actors := []*identity.Actor{
		creator,
		assignee,
		supporter,
		actor(t, superuser()),
		actor(t, staff()),
		actor(t, withCapability(identity.CapabilityApprove)),
		actor(t, withCapability(identity.CapabilityViewAll)),
		actor(t, inDepartment(dept)),
		actor(t),
	}

	for _, status := range []models.Status{
		models.StatusNew, models.StatusDoing, models.StatusPending,
		models.StatusDone, models.StatusCancelled,
	} {
		tk := task(creator.ID, assignee.ID)
		tk.DepartmentID = &dept
		tk.Supporters = []id.UserID{supporter.ID}
		tk.Status = status
		for _, a := range actors {
			assert.Equal(t, CanEdit(a, tk), CanDelete(a, tk),
				"status %s actor %s", status, a.Username)
		}
	}
}

func TestCanUpdateProgress(t *testing.T) {
	creator := actor(t)
	assignee := actor(t)

	tk := task(creator.ID, assignee.ID)

	assert.True(t, CanUpdateProgress(assignee, tk))
	assert.True(t, CanUpdateProgress(actor(t, withCapability(identity.CapabilityApprove)), tk))
	assert.False(t, CanUpdateProgress(creator, tk), "creator alone is not authorized")
	assert.False(t, CanUpdateProgress(actor(t), tk))
}

func TestCanSetDeadline(t *testing.T) {
	creator := actor(t)
	assignee := actor(t)

	tk := task(creator.ID, assignee.ID)
	tk.Status = models.StatusDone

	assert.True(t, CanSetDeadline(creator, tk), "creator keeps deadline rights on DONE")
	assert.True(t, CanSetDeadline(assignee, tk))
	assert.True(t, CanSetDeadline(actor(t, withCapability(identity.CapabilityApprove)), tk))
	assert.False(t, CanSetDeadline(actor(t), tk))
}

func TestCanViewAll(t *testing.T) {
	assert.True(t, CanViewAll(actor(t, superuser())))
	assert.True(t, CanViewAll(actor(t, staff())))
	assert.True(t, CanViewAll(actor(t, withCapability(identity.CapabilityApprove))))
	assert.True(t, CanViewAll(actor(t, withCapability(identity.CapabilityViewAll))))
	assert.False(t, CanViewAll(actor(t)))
}
