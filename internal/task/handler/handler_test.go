package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	identitymodels "worktrack/internal/identity/models"
	identityservice "worktrack/internal/identity/service"
	profileStore "worktrack/internal/identity/store/profile"
	roleStore "worktrack/internal/identity/store/role"
	userStore "worktrack/internal/identity/store/user"
	"worktrack/internal/task/service"
	feedbackStore "worktrack/internal/task/store/feedback"
	taskStore "worktrack/internal/task/store/task"
	updateStore "worktrack/internal/task/store/update"
	id "worktrack/pkg/domain"
	"worktrack/pkg/requestcontext"
)

// HandlerSuite drives the task endpoints through a chi router backed by
// real in-memory stores. Authentication is simulated by injecting the
// actor ID the way the JWT middleware does.
type HandlerSuite struct {
	suite.Suite
	router   http.Handler
	identity *identityservice.Service
	now      time.Time

	manager  *identitymodels.User
	employee *identitymodels.User
	dept     id.DepartmentID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.dept = id.NewDepartmentID()

	roles := roleStore.NewInMemory()
	s.Require().NoError(roles.Save(ctx, &identitymodels.Role{
		Name:         "manager",
		Capabilities: []string{identitymodels.CapabilityApprove, identitymodels.CapabilityViewAll},
	}))
	s.Require().NoError(roles.Save(ctx, &identitymodels.Role{Name: "employee"}))

	s.identity = identityservice.New(userStore.NewInMemory(), profileStore.NewInMemory(), roles)

	var err error
	s.manager, err = s.identity.CreateIdentity(ctx, identityservice.CreateIdentityInput{
		Username:  "manager",
		RoleNames: []string{"manager"},
	})
	s.Require().NoError(err)
	s.employee, err = s.identity.CreateIdentity(ctx, identityservice.CreateIdentityInput{
		Username:     "employee",
		RoleNames:    []string{"employee"},
		DepartmentID: &s.dept,
	})
	s.Require().NoError(err)

	tasks := taskStore.NewInMemory()
	updates := updateStore.NewInMemory()
	svc := service.New(tasks, updates, feedbackStore.NewInMemory(),
		service.MemoryTx{Tasks: tasks, Updates: updates},
		service.WithIdentityDirectory(s.identity),
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(svc, s.identity, logger)

	r := chi.NewRouter()
	r.Use(s.stubAuth())
	handler.Register(r)
	s.router = r
}

// stubAuth injects the actor ID from the X-Test-Actor header and stamps
// the request-scoped clock, standing in for the JWT middleware chain.
func (s *HandlerSuite) stubAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), s.now)
			if raw := r.Header.Get("X-Test-Actor"); raw != "" {
				actorID, err := id.ParseUserID(raw)
				s.Require().NoError(err)
				ctx = requestcontext.WithActorID(ctx, actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *HandlerSuite) do(actor *identitymodels.User, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set("X-Test-Actor", actor.ID.String())
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) createTask(creator *identitymodels.User, assignee id.UserID) TaskResponse {
	rec := s.do(creator, http.MethodPost, "/tasks", map[string]any{
		"title":         "Quarterly report",
		"assignee_id":   assignee.String(),
		"department_id": s.dept.String(),
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resp TaskResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) TestCreate() {
	s.Run("creates a task", func() {
		task := s.createTask(s.manager, s.employee.ID)
		s.Equal("Quarterly report", task.Title)
		s.Equal("NEW", task.Status)
		s.Equal(s.manager.ID.String(), task.AssignedBy)
	})

	s.Run("rejects invalid JSON", func() {
		req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader([]byte("not json")))
		req.Header.Set("X-Test-Actor", s.manager.ID.String())
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects missing title", func() {
		rec := s.do(s.manager, http.MethodPost, "/tasks", map[string]any{
			"assignee_id": s.employee.ID.String(),
		})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("rejects unknown assignee", func() {
		rec := s.do(s.manager, http.MethodPost, "/tasks", map[string]any{
			"title":       "Nobody home",
			"assignee_id": id.NewUserID().String(),
		})
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("requires authentication", func() {
		rec := s.do(nil, http.MethodPost, "/tasks", map[string]any{
			"title":       "Anonymous",
			"assignee_id": s.employee.ID.String(),
		})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestProgressFlow() {
	task := s.createTask(s.manager, s.employee.ID)

	rec := s.do(s.employee, http.MethodPost, "/tasks/"+task.ID+"/progress", map[string]any{
		"progress": 100,
		"content":  "draft submitted",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(s.employee, http.MethodGet, "/tasks/"+task.ID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var got TaskResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal("PENDING", got.Status)
	s.Equal(100, got.Progress)

	rec = s.do(s.manager, http.MethodPost, "/tasks/"+task.ID+"/approve", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal("DONE", got.Status)
	s.Equal(s.manager.ID.String(), got.Approver)
	s.NotNil(got.ApprovedAt)

	s.Run("employee may not approve", func() {
		other := s.createTask(s.manager, s.employee.ID)
		rec := s.do(s.employee, http.MethodPost, "/tasks/"+other.ID+"/approve", nil)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("progress out of bounds is unprocessable", func() {
		rec := s.do(s.employee, http.MethodPost, "/tasks/"+task.ID+"/progress", map[string]any{
			"progress": 150,
		})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})
}

func (s *HandlerSuite) TestHistory() {
	task := s.createTask(s.manager, s.employee.ID)
	for _, p := range []int{20, 60} {
		rec := s.do(s.employee, http.MethodPost, "/tasks/"+task.ID+"/progress", map[string]any{
			"progress": p,
		})
		s.Require().Equal(http.StatusCreated, rec.Code)
	}
	rec := s.do(s.manager, http.MethodPost, "/tasks/"+task.ID+"/feedback", map[string]any{
		"content": "keep going",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(s.employee, http.MethodGet, "/tasks/"+task.ID+"/updates", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var history HistoryResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &history))
	s.Len(history.Updates, 2)
	s.Len(history.Feedbacks, 1)
}

func (s *HandlerSuite) TestDeadline() {
	task := s.createTask(s.manager, s.employee.ID)
	due := s.now.AddDate(0, 0, 5).Format(time.RFC3339)

	rec := s.do(s.employee, http.MethodPut, "/tasks/"+task.ID+"/deadline", map[string]any{
		"deadline": due,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var got TaskResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().NotNil(got.Deadline)
	s.Require().NotNil(got.DaysUntilDeadline)
	s.Equal(5, *got.DaysUntilDeadline)
	s.False(got.Overdue)

	s.Run("clearing", func() {
		rec := s.do(s.employee, http.MethodPut, "/tasks/"+task.ID+"/deadline", map[string]any{})
		s.Require().Equal(http.StatusOK, rec.Code)
		var cleared TaskResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &cleared))
		s.Nil(cleared.Deadline)
	})

	s.Run("bad timestamp", func() {
		rec := s.do(s.employee, http.MethodPut, "/tasks/"+task.ID+"/deadline", map[string]any{
			"deadline": "next tuesday",
		})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})
}

func (s *HandlerSuite) TestListScopes() {
	for i := 0; i < 2; i++ {
		s.createTask(s.manager, s.employee.ID)
	}

	s.Run("manager lists all", func() {
		rec := s.do(s.manager, http.MethodGet, "/tasks?scope=all", nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp TaskListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Len(resp.Tasks, 2)
	})

	s.Run("employee scope all downgrades silently", func() {
		all := s.do(s.employee, http.MethodGet, "/tasks?scope=all", nil)
		s.Require().Equal(http.StatusOK, all.Code)
		own := s.do(s.employee, http.MethodGet, "/tasks?scope=department", nil)
		s.Require().Equal(http.StatusOK, own.Code)
		s.JSONEq(own.Body.String(), all.Body.String())
	})

	s.Run("status filter", func() {
		rec := s.do(s.manager, http.MethodGet, fmt.Sprintf("/tasks?scope=all&status=%s", "doing"), nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp TaskListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Empty(resp.Tasks)
	})
}

func (s *HandlerSuite) TestDelete() {
	task := s.createTask(s.manager, s.employee.ID)

	s.Run("assignee may not delete", func() {
		rec := s.do(s.employee, http.MethodDelete, "/tasks/"+task.ID, nil)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("manager deletes", func() {
		rec := s.do(s.manager, http.MethodDelete, "/tasks/"+task.ID, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(s.manager, http.MethodGet, "/tasks/"+task.ID, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}
