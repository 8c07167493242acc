package update

import (
	"context"
	"database/sql"
	"fmt"

	"worktrack/internal/task/models"
	id "worktrack/pkg/domain"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresStore persists ledger entries in PostgreSQL. Rows cascade away
// with their task; nothing else deletes them.
type PostgresStore struct {
	q querier
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{q: db}
}

// NewPostgresTx binds a store to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{q: tx}
}

func (s *PostgresStore) Append(ctx context.Context, u *models.Update) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO task_updates (id, task_id, user_id, content, progress, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID.String(), u.TaskID.String(), u.UserID.String(), nullContent(u.Content),
		u.Progress, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append task update: %w", err)
	}
	return nil
}

// ListByTask returns a task's ledger entries newest-first.
func (s *PostgresStore) ListByTask(ctx context.Context, taskID id.TaskID) ([]*models.Update, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, task_id, user_id, content, progress, created_at
		FROM task_updates WHERE task_id = $1
		ORDER BY created_at DESC`,
		taskID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list task updates: %w", err)
	}
	defer rows.Close()

	var out []*models.Update
	for rows.Next() {
		var (
			u          models.Update
			rawID      string
			rawTask    string
			rawUser    string
			rawContent sql.NullString
		)
		if err := rows.Scan(&rawID, &rawTask, &rawUser, &rawContent, &u.Progress, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task update: %w", err)
		}
		parsedTask, err := id.ParseTaskID(rawTask)
		if err != nil {
			return nil, fmt.Errorf("scan update task id: %w", err)
		}
		parsedUser, err := id.ParseUserID(rawUser)
		if err != nil {
			return nil, fmt.Errorf("scan update user id: %w", err)
		}
		parsedID, err := id.ParseUpdateID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan update id: %w", err)
		}
		u.ID = parsedID
		u.TaskID = parsedTask
		u.UserID = parsedUser
		u.Content = rawContent.String
		out = append(out, &u)
	}
	return out, rows.Err()
}

// DeleteByTask removes a task's ledger. The schema cascade already covers
// task deletion; this exists for stores composed without foreign keys.
func (s *PostgresStore) DeleteByTask(ctx context.Context, taskID id.TaskID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM task_updates WHERE task_id = $1`, taskID.String()); err != nil {
		return fmt.Errorf("delete task updates: %w", err)
	}
	return nil
}

func nullContent(content string) sql.NullString {
	if content == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: content, Valid: true}
}
