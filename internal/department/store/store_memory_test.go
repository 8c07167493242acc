package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"worktrack/internal/department/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

type DepartmentStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestDepartmentStoreSuite(t *testing.T) {
	suite.Run(t, new(DepartmentStoreSuite))
}

func (s *DepartmentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *DepartmentStoreSuite) dept(name, code string) *models.Department {
	dept, err := models.New(id.NewDepartmentID(), name, code, "", s.now)
	s.Require().NoError(err)
	return dept
}

func (s *DepartmentStoreSuite) TestCreateAndFind() {
	dept := s.dept("Engineering", "ENG")
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, dept))

	found, err := s.store.FindByID(s.ctx, dept.ID)
	s.Require().NoError(err)
	s.Equal(dept.Name, found.Name)
	s.True(found.IsActive)

	s.Run("returned value is a copy", func() {
		found.Name = "mutated"
		again, err := s.store.FindByID(s.ctx, dept.ID)
		s.Require().NoError(err)
		s.Equal("Engineering", again.Name)
	})
}

func (s *DepartmentStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(s.ctx, id.NewDepartmentID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DepartmentStoreSuite) TestUniqueness() {
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, s.dept("Engineering", "ENG")))

	s.Run("name collides case-insensitively", func() {
		err := s.store.CreateIfAvailable(s.ctx, s.dept("engineering", "OTHER"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("code collides", func() {
		err := s.store.CreateIfAvailable(s.ctx, s.dept("Platform", "ENG"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("empty codes do not collide", func() {
		s.Require().NoError(s.store.CreateIfAvailable(s.ctx, s.dept("Sales", "")))
		s.NoError(s.store.CreateIfAvailable(s.ctx, s.dept("Support", "")))
	})
}

func (s *DepartmentStoreSuite) TestUpdate() {
	dept := s.dept("Engineering", "ENG")
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, dept))

	dept.IsActive = false
	s.Require().NoError(s.store.Update(s.ctx, dept))

	found, err := s.store.FindByID(s.ctx, dept.ID)
	s.Require().NoError(err)
	s.False(found.IsActive)

	s.Run("unknown department", func() {
		err := s.store.Update(s.ctx, s.dept("Ghost", ""))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *DepartmentStoreSuite) TestListSortedByName() {
	for _, name := range []string{"Support", "Engineering", "Platform"} {
		s.Require().NoError(s.store.CreateIfAvailable(s.ctx, s.dept(name, "")))
	}

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("Engineering", list[0].Name)
	s.Equal("Platform", list[1].Name)
	s.Equal("Support", list[2].Name)
}
