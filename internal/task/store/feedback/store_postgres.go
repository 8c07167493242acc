package feedback

import (
	"context"
	"database/sql"
	"fmt"

	"worktrack/internal/task/models"
	id "worktrack/pkg/domain"
)

// PostgresStore persists feedback entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, f *models.Feedback) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manager_feedbacks (id, task_id, manager_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		f.ID.String(), f.TaskID.String(), f.ManagerID.String(), f.Content, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}
	return nil
}

// ListByTask returns a task's feedback entries newest-first.
func (s *PostgresStore) ListByTask(ctx context.Context, taskID id.TaskID) ([]*models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, manager_id, content, created_at
		FROM manager_feedbacks WHERE task_id = $1
		ORDER BY created_at DESC`,
		taskID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []*models.Feedback
	for rows.Next() {
		var (
			f          models.Feedback
			rawID      string
			rawTask    string
			rawManager string
		)
		if err := rows.Scan(&rawID, &rawTask, &rawManager, &f.Content, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if f.ID, err = id.ParseFeedbackID(rawID); err != nil {
			return nil, fmt.Errorf("scan feedback id: %w", err)
		}
		if f.TaskID, err = id.ParseTaskID(rawTask); err != nil {
			return nil, fmt.Errorf("scan feedback task id: %w", err)
		}
		if f.ManagerID, err = id.ParseUserID(rawManager); err != nil {
			return nil, fmt.Errorf("scan feedback manager id: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteByTask(ctx context.Context, taskID id.TaskID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM manager_feedbacks WHERE task_id = $1`, taskID.String()); err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return nil
}
