package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"worktrack/internal/task/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

// querier abstracts *sql.DB and *sql.Tx so the same store runs standalone
// or inside the RunInTx transaction boundary.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists tasks in PostgreSQL.
type PostgresStore struct {
	q querier
}

// NewPostgres constructs a PostgreSQL-backed task store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{q: db}
}

// NewPostgresTx binds a store to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{q: tx}
}

const taskColumns = `id, department_id, title, content, priority, assigned_by, assignee,
	progress, status, deadline, estimated_hours, approver, approved_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, t *models.Task) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID.String(), nullDept(t.DepartmentID), t.Title, t.Content, string(t.Priority),
		t.AssignedBy.String(), t.Assignee.String(), t.Progress, string(t.Status),
		nullTime(t.Deadline), nullInt(t.EstimatedHours), nullUser(t.Approver),
		nullTime(t.ApprovedAt), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return s.replaceSupporters(ctx, t.ID, t.Supporters)
}

func (s *PostgresStore) FindByID(ctx context.Context, taskID id.TaskID) (*models.Task, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, taskID.String())
	t, err := scanTask(row.Scan)
	if err != nil {
		return nil, err
	}
	supporters, err := s.loadSupporters(ctx, taskID)
	if err != nil {
		return nil, err
	}
	t.Supporters = supporters
	return t, nil
}

// Update rewrites the editable fields and the supporter set. Used by the
// full edit operation; ledger-driven writes go through UpdateFields.
func (s *PostgresStore) Update(ctx context.Context, t *models.Task) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE tasks
		SET department_id = $2, title = $3, content = $4, priority = $5,
		    progress = $6, status = $7, deadline = $8, estimated_hours = $9,
		    approver = $10, approved_at = $11, updated_at = $12
		WHERE id = $1`,
		t.ID.String(), nullDept(t.DepartmentID), t.Title, t.Content, string(t.Priority),
		t.Progress, string(t.Status), nullTime(t.Deadline), nullInt(t.EstimatedHours),
		nullUser(t.Approver), nullTime(t.ApprovedAt), t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return s.replaceSupporters(ctx, t.ID, t.Supporters)
}

// UpdateFields persists only the named fields, minimizing write contention
// on concurrent progress submissions.
func (s *PostgresStore) UpdateFields(ctx context.Context, t *models.Task, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	set := make([]string, 0, len(fields))
	args := []any{t.ID.String()}
	place := 2
	for _, field := range fields {
		var value any
		switch field {
		case models.FieldProgress:
			value = t.Progress
		case models.FieldStatus:
			value = string(t.Status)
		case models.FieldDeadline:
			value = nullTime(t.Deadline)
		case models.FieldApprover:
			value = nullUser(t.Approver)
		case models.FieldApprovedAt:
			value = nullTime(t.ApprovedAt)
		case models.FieldUpdatedAt:
			value = t.UpdatedAt
		default:
			return fmt.Errorf("unknown task field %q", field)
		}
		set = append(set, fmt.Sprintf("%s = $%d", field, place))
		args = append(args, value)
		place++
	}

	res, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET `+strings.Join(set, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update task fields: %w", err)
	}
	return requireRow(res)
}

// Delete removes the task; ledger entries and feedback cascade away.
func (s *PostgresStore) Delete(ctx context.Context, taskID id.TaskID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, taskID.String())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(res)
}

// List returns matching tasks newest-first.
func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, filter.DepartmentID.String())
		where = append(where, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, filter.AssigneeID.String())
		where = append(where, fmt.Sprintf("assignee = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range out {
		supporters, err := s.loadSupporters(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Supporters = supporters
	}
	return out, nil
}

func (s *PostgresStore) IsUserReferenced(ctx context.Context, userID id.UserID) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM tasks WHERE assigned_by = $1 OR assignee = $1)`,
		userID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check task references: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) replaceSupporters(ctx context.Context, taskID id.TaskID, supporters []id.UserID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM task_supporters WHERE task_id = $1`, taskID.String()); err != nil {
		return fmt.Errorf("clear supporters: %w", err)
	}
	for _, userID := range supporters {
		if _, err := s.q.ExecContext(ctx, `
			INSERT INTO task_supporters (task_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			taskID.String(), userID.String(),
		); err != nil {
			return fmt.Errorf("add supporter: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) loadSupporters(ctx context.Context, taskID id.TaskID) ([]id.UserID, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT user_id FROM task_supporters WHERE task_id = $1`, taskID.String())
	if err != nil {
		return nil, fmt.Errorf("load supporters: %w", err)
	}
	defer rows.Close()

	var out []id.UserID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan supporter: %w", err)
		}
		userID, err := id.ParseUserID(raw)
		if err != nil {
			return nil, fmt.Errorf("scan supporter id: %w", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	var (
		t           models.Task
		rawID       string
		rawDept     sql.NullString
		rawPriority string
		rawBy       string
		rawAssignee string
		rawStatus   string
		deadline    sql.NullTime
		estimated   sql.NullInt64
		rawApprover sql.NullString
		approvedAt  sql.NullTime
	)
	err := scan(&rawID, &rawDept, &t.Title, &t.Content, &rawPriority, &rawBy, &rawAssignee,
		&t.Progress, &rawStatus, &deadline, &estimated, &rawApprover, &approvedAt,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	taskID, err := id.ParseTaskID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan task id: %w", err)
	}
	t.ID = taskID
	t.Priority = models.Priority(rawPriority)
	t.Status = models.Status(rawStatus)

	if t.AssignedBy, err = id.ParseUserID(rawBy); err != nil {
		return nil, fmt.Errorf("scan assigner id: %w", err)
	}
	if t.Assignee, err = id.ParseUserID(rawAssignee); err != nil {
		return nil, fmt.Errorf("scan assignee id: %w", err)
	}
	if rawDept.Valid {
		deptID, err := id.ParseDepartmentID(rawDept.String)
		if err != nil {
			return nil, fmt.Errorf("scan department id: %w", err)
		}
		t.DepartmentID = &deptID
	}
	if rawApprover.Valid {
		approverID, err := id.ParseUserID(rawApprover.String)
		if err != nil {
			return nil, fmt.Errorf("scan approver id: %w", err)
		}
		t.Approver = &approverID
	}
	if deadline.Valid {
		t.Deadline = &deadline.Time
	}
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	if estimated.Valid {
		hours := int(estimated.Int64)
		t.EstimatedHours = &hours
	}
	return &t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullDept(d *id.DepartmentID) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullUser(u *id.UserID) sql.NullString {
	if u == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: u.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
