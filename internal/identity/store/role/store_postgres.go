package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"worktrack/internal/identity/models"
	"worktrack/pkg/platform/sentinel"
)

// PostgresStore persists roles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed role store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, r *models.Role) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roles (name, capabilities)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET capabilities = EXCLUDED.capabilities`,
		r.Name, pq.Array(r.Capabilities),
	)
	if err != nil {
		return fmt.Errorf("save role: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*models.Role, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, capabilities FROM roles WHERE name = $1`, name)

	var (
		r    models.Role
		caps pq.StringArray
	)
	if err := row.Scan(&r.Name, &caps); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}
	r.Capabilities = caps
	return &r, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Role, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, capabilities FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []*models.Role
	for rows.Next() {
		var (
			r    models.Role
			caps pq.StringArray
		)
		if err := rows.Scan(&r.Name, &caps); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		r.Capabilities = caps
		out = append(out, &r)
	}
	return out, rows.Err()
}
