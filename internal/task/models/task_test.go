package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "worktrack/pkg/domain"
	dErrors "worktrack/pkg/domain-errors"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTask(t *testing.T) *Task {
	t.Helper()
	task, err := NewTask(id.NewTaskID(), "fixture", "", PriorityMedium, id.NewUserID(), id.NewUserID(), fixedNow)
	require.NoError(t, err)
	return task
}

func TestStatusForProgress(t *testing.T) {
	cases := []struct {
		progress int
		want     Status
	}{
		{0, StatusNew},
		{1, StatusDoing},
		{50, StatusDoing},
		{99, StatusDoing},
		{100, StatusPending},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusForProgress(tc.progress), "progress %d", tc.progress)
	}
}

func TestNewTask(t *testing.T) {
	t.Run("starts NEW with zero progress", func(t *testing.T) {
		task := newTask(t)
		assert.Equal(t, StatusNew, task.Status)
		assert.Zero(t, task.Progress)
		assert.Equal(t, fixedNow, task.CreatedAt)
	})

	t.Run("trims the title", func(t *testing.T) {
		task, err := NewTask(id.NewTaskID(), "  padded  ", "", PriorityLow, id.NewUserID(), id.NewUserID(), fixedNow)
		require.NoError(t, err)
		assert.Equal(t, "padded", task.Title)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewTask(id.NewTaskID(), "   ", "", PriorityLow, id.NewUserID(), id.NewUserID(), fixedNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("defaults priority to MEDIUM", func(t *testing.T) {
		task, err := NewTask(id.NewTaskID(), "no priority", "", "", id.NewUserID(), id.NewUserID(), fixedNow)
		require.NoError(t, err)
		assert.Equal(t, PriorityMedium, task.Priority)
	})

	t.Run("rejects nil assignee", func(t *testing.T) {
		_, err := NewTask(id.NewTaskID(), "nobody", "", PriorityLow, id.NewUserID(), id.UserID{}, fixedNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestApplyProgress(t *testing.T) {
	t.Run("projects progress onto status", func(t *testing.T) {
		task := newTask(t)
		changed := task.ApplyProgress(40, fixedNow.Add(time.Minute))
		assert.ElementsMatch(t, []string{FieldProgress, FieldStatus, FieldUpdatedAt}, changed)
		assert.Equal(t, StatusDoing, task.Status)
		assert.Equal(t, 40, task.Progress)
		assert.Equal(t, fixedNow.Add(time.Minute), task.UpdatedAt)
	})

	t.Run("full progress requests approval, never DONE", func(t *testing.T) {
		task := newTask(t)
		task.ApplyProgress(100, fixedNow)
		assert.Equal(t, StatusPending, task.Status)
		assert.Nil(t, task.Approver)
		assert.Nil(t, task.ApprovedAt)
	})

	t.Run("zero progress returns a DOING task to NEW", func(t *testing.T) {
		task := newTask(t)
		task.ApplyProgress(60, fixedNow)
		require.Equal(t, StatusDoing, task.Status)
		task.ApplyProgress(0, fixedNow)
		assert.Equal(t, StatusNew, task.Status)
	})

	t.Run("same value changes nothing", func(t *testing.T) {
		task := newTask(t)
		task.ApplyProgress(30, fixedNow)
		before := task.UpdatedAt
		changed := task.ApplyProgress(30, fixedNow.Add(time.Hour))
		assert.Empty(t, changed)
		assert.Equal(t, before, task.UpdatedAt)
	})

	t.Run("DONE status is sticky against the ledger", func(t *testing.T) {
		task := newTask(t)
		task.Approve(id.NewUserID(), fixedNow)
		changed := task.ApplyProgress(10, fixedNow.Add(time.Minute))
		assert.Equal(t, StatusDone, task.Status)
		assert.Equal(t, 10, task.Progress)
		assert.NotContains(t, changed, FieldStatus)
	})
}

func TestApprove(t *testing.T) {
	t.Run("stamps approver and time", func(t *testing.T) {
		task := newTask(t)
		approver := id.NewUserID()
		changed := task.Approve(approver, fixedNow)
		assert.ElementsMatch(t, []string{FieldStatus, FieldApprover, FieldApprovedAt, FieldUpdatedAt}, changed)
		assert.Equal(t, StatusDone, task.Status)
		require.NotNil(t, task.Approver)
		assert.Equal(t, approver, *task.Approver)
		require.NotNil(t, task.ApprovedAt)
		assert.Equal(t, fixedNow, *task.ApprovedAt)
	})

	t.Run("second approve keeps the original timestamp", func(t *testing.T) {
		task := newTask(t)
		approver := id.NewUserID()
		task.Approve(approver, fixedNow)
		changed := task.Approve(approver, fixedNow.Add(time.Hour))
		assert.Empty(t, changed)
		assert.Equal(t, fixedNow, *task.ApprovedAt)
	})

	t.Run("different approver is recorded without restamping", func(t *testing.T) {
		task := newTask(t)
		task.Approve(id.NewUserID(), fixedNow)
		second := id.NewUserID()
		task.Approve(second, fixedNow.Add(time.Hour))
		assert.Equal(t, second, *task.Approver)
		assert.Equal(t, fixedNow, *task.ApprovedAt)
	})

	t.Run("approval does not require full progress", func(t *testing.T) {
		task := newTask(t)
		task.ApplyProgress(55, fixedNow)
		task.Approve(id.NewUserID(), fixedNow)
		assert.Equal(t, StatusDone, task.Status)
		assert.Equal(t, 55, task.Progress)
	})
}

func TestDeadline(t *testing.T) {
	task := newTask(t)

	due := fixedNow.AddDate(0, 0, 3)
	changed := task.SetDeadline(&due, fixedNow)
	assert.ElementsMatch(t, []string{FieldDeadline, FieldUpdatedAt}, changed)

	assert.False(t, task.IsOverdue(fixedNow))
	assert.True(t, task.IsOverdue(due.Add(time.Second)))

	days, ok := task.DaysUntilDeadline(fixedNow)
	require.True(t, ok)
	assert.Equal(t, 3, days)

	task.Approve(id.NewUserID(), fixedNow)
	assert.False(t, task.IsOverdue(due.Add(time.Hour)), "DONE tasks are never overdue")

	task.SetDeadline(nil, fixedNow)
	assert.Nil(t, task.Deadline)
	_, ok = task.DaysUntilDeadline(fixedNow)
	assert.False(t, ok)
}

func TestValidateProgress(t *testing.T) {
	assert.NoError(t, ValidateProgress(0))
	assert.NoError(t, ValidateProgress(100))
	assert.True(t, dErrors.HasCode(ValidateProgress(-1), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(ValidateProgress(101), dErrors.CodeValidation))
}

func TestNewUpdate(t *testing.T) {
	taskID := id.NewTaskID()
	entry, err := NewUpdate(id.NewUpdateID(), taskID, id.NewUserID(), 75, "almost there", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, taskID, entry.TaskID)
	assert.Equal(t, 75, entry.Progress)

	_, err = NewUpdate(id.NewUpdateID(), taskID, id.NewUserID(), 120, "", fixedNow)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewFeedback(t *testing.T) {
	fb, err := NewFeedback(id.NewFeedbackID(), id.NewTaskID(), id.NewUserID(), "well done", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "well done", fb.Content)

	_, err = NewFeedback(id.NewFeedbackID(), id.NewTaskID(), id.NewUserID(), "   ", fixedNow)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
