//go:build integration

package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymodels "worktrack/internal/identity/models"
	userstore "worktrack/internal/identity/store/user"
	"worktrack/internal/task/models"
	"worktrack/internal/task/store/task"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
	"worktrack/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *task.PostgresStore
	users    *userstore.PostgresStore

	creator  id.UserID
	assignee id.UserID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = task.NewPostgres(s.postgres.DB)
	s.users = userstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "task_updates", "manager_feedbacks", "task_supporters", "tasks", "user_profiles", "users", "departments")
	s.Require().NoError(err)

	s.creator = s.seedUser("creator")
	s.assignee = s.seedUser("assignee")
}

func (s *PostgresStoreSuite) seedUser(username string) id.UserID {
	user, err := identitymodels.NewUser(id.NewUserID(), username, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfUsernameAvailable(context.Background(), user))
	return user.ID
}

func (s *PostgresStoreSuite) newTask(title string) *models.Task {
	t, err := models.NewTask(id.NewTaskID(), title, "", models.PriorityMedium, s.creator, s.assignee, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return t
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	t := s.newTask("Quarterly report")
	t.Supporters = []id.UserID{s.creator}

	s.Require().NoError(s.store.Create(ctx, t))

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(t.Title, found.Title)
	s.Equal(models.StatusNew, found.Status)
	s.Equal(t.AssignedBy, found.AssignedBy)
	s.Equal(t.Assignee, found.Assignee)
	s.Equal([]id.UserID{s.creator}, found.Supporters)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), id.NewTaskID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateCreate() {
	ctx := context.Background()
	t := s.newTask("Once")
	s.Require().NoError(s.store.Create(ctx, t))
	s.ErrorIs(s.store.Create(ctx, t), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdateFieldsPersistsOnlyNamedColumns() {
	ctx := context.Background()
	t := s.newTask("Partial update")
	s.Require().NoError(s.store.Create(ctx, t))

	now := time.Now().UTC().Truncate(time.Microsecond)
	t.Title = "should not be written"
	t.Progress = 40
	t.Status = models.StatusDoing
	t.UpdatedAt = now

	err := s.store.UpdateFields(ctx, t, []string{models.FieldProgress, models.FieldStatus, models.FieldUpdatedAt})
	s.Require().NoError(err)

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Equal("Partial update", found.Title)
	s.Equal(40, found.Progress)
	s.Equal(models.StatusDoing, found.Status)
}

func (s *PostgresStoreSuite) TestUpdateFieldsApproval() {
	ctx := context.Background()
	t := s.newTask("Approval stamp")
	s.Require().NoError(s.store.Create(ctx, t))

	now := time.Now().UTC().Truncate(time.Microsecond)
	t.Status = models.StatusDone
	t.Approver = &s.creator
	t.ApprovedAt = &now
	t.UpdatedAt = now

	err := s.store.UpdateFields(ctx, t, []string{models.FieldStatus, models.FieldApprover, models.FieldApprovedAt, models.FieldUpdatedAt})
	s.Require().NoError(err)

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDone, found.Status)
	s.Require().NotNil(found.Approver)
	s.Equal(s.creator, *found.Approver)
	s.Require().NotNil(found.ApprovedAt)
	s.WithinDuration(now, *found.ApprovedAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestFullUpdateReplacesSupporters() {
	ctx := context.Background()
	t := s.newTask("Supporters")
	t.Supporters = []id.UserID{s.creator}
	s.Require().NoError(s.store.Create(ctx, t))

	helper := s.seedUser("helper")
	t.Supporters = []id.UserID{helper}
	t.Content = "now with help"
	s.Require().NoError(s.store.Update(ctx, t))

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Equal("now with help", found.Content)
	s.Equal([]id.UserID{helper}, found.Supporters)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	dept := s.seedDepartment("Engineering")

	inDept := s.newTask("in department")
	inDept.DepartmentID = &dept
	s.Require().NoError(s.store.Create(ctx, inDept))

	outside := s.newTask("outside")
	s.Require().NoError(s.store.Create(ctx, outside))

	doing := s.newTask("doing")
	doing.Status = models.StatusDoing
	doing.Progress = 30
	s.Require().NoError(s.store.Create(ctx, doing))

	s.Run("by department", func() {
		got, err := s.store.List(ctx, task.ListFilter{DepartmentID: &dept})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(inDept.ID, got[0].ID)
	})

	s.Run("by status", func() {
		status := models.StatusDoing
		got, err := s.store.List(ctx, task.ListFilter{Status: &status})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(doing.ID, got[0].ID)
	})

	s.Run("by assignee", func() {
		got, err := s.store.List(ctx, task.ListFilter{AssigneeID: &s.assignee})
		s.Require().NoError(err)
		s.Len(got, 3)
	})
}

func (s *PostgresStoreSuite) seedDepartment(name string) id.DepartmentID {
	deptID := id.NewDepartmentID()
	now := time.Now().UTC()
	_, err := s.postgres.DB.ExecContext(context.Background(),
		`INSERT INTO departments (id, name, is_active, created_at, updated_at) VALUES ($1, $2, TRUE, $3, $3)`,
		deptID.String(), name, now,
	)
	s.Require().NoError(err)
	return deptID
}

func (s *PostgresStoreSuite) TestIsUserReferenced() {
	ctx := context.Background()
	t := s.newTask("References")
	s.Require().NoError(s.store.Create(ctx, t))

	referenced, err := s.store.IsUserReferenced(ctx, s.assignee)
	s.Require().NoError(err)
	s.True(referenced)

	bystander := s.seedUser("bystander")
	referenced, err = s.store.IsUserReferenced(ctx, bystander)
	s.Require().NoError(err)
	s.False(referenced)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	t := s.newTask("Doomed")
	s.Require().NoError(s.store.Create(ctx, t))

	s.Require().NoError(s.store.Delete(ctx, t.ID))
	_, err := s.store.FindByID(ctx, t.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, t.ID), sentinel.ErrNotFound)
}
