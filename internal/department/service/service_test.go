package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	departmentStore "worktrack/internal/department/store"
	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
	"worktrack/pkg/requestcontext"
)

type DepartmentServiceSuite struct {
	suite.Suite
	store   *departmentStore.InMemory
	service *Service
	now     time.Time
}

func TestDepartmentServiceSuite(t *testing.T) {
	suite.Run(t, new(DepartmentServiceSuite))
}

func (s *DepartmentServiceSuite) SetupTest() {
	s.store = departmentStore.NewInMemory()
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.service = New(s.store)
}

func (s *DepartmentServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *DepartmentServiceSuite) TestCreate() {
	s.Run("creates an active department", func() {
		dept, err := s.service.Create(s.ctx(), "Engineering", "ENG", "builds things")
		s.Require().NoError(err)
		s.True(dept.IsActive)
		s.Equal("Engineering", dept.Name)
		s.Equal(s.now, dept.CreatedAt)
	})

	s.Run("duplicate name conflicts case-insensitively", func() {
		_, err := s.service.Create(s.ctx(), "Sales", "", "")
		s.Require().NoError(err)
		_, err = s.service.Create(s.ctx(), "sales", "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("duplicate code conflicts", func() {
		_, err := s.service.Create(s.ctx(), "Operations", "OPS", "")
		s.Require().NoError(err)
		_, err = s.service.Create(s.ctx(), "Outreach", "OPS", "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("empty name fails validation", func() {
		_, err := s.service.Create(s.ctx(), "  ", "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *DepartmentServiceSuite) TestGet() {
	dept, err := s.service.Create(s.ctx(), "Finance", "", "")
	s.Require().NoError(err)

	found, err := s.service.Get(s.ctx(), dept.ID)
	s.Require().NoError(err)
	s.Equal(dept.ID, found.ID)

	_, err = s.service.Get(s.ctx(), id.NewDepartmentID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DepartmentServiceSuite) TestList() {
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := s.service.Create(s.ctx(), name, "", "")
		s.Require().NoError(err)
	}
	departments, err := s.service.List(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(departments, 3)
	s.Equal("Alpha", departments[0].Name)
	s.Equal("Zeta", departments[2].Name)
}

func (s *DepartmentServiceSuite) TestDeactivate() {
	dept, err := s.service.Create(s.ctx(), "Legacy", "", "")
	s.Require().NoError(err)

	deactivated, err := s.service.Deactivate(s.ctx(), dept.ID)
	s.Require().NoError(err)
	s.False(deactivated.IsActive)

	_, err = s.service.Deactivate(s.ctx(), dept.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = s.service.Deactivate(s.ctx(), id.NewDepartmentID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
