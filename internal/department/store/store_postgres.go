package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"worktrack/internal/department/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

// PostgresStore persists departments in PostgreSQL. Name and code
// uniqueness is enforced by partial unique indexes.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed department store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfAvailable(ctx context.Context, dept *models.Department) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO departments (id, name, code, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		dept.ID.String(), dept.Name, nullString(dept.Code), dept.Description,
		dept.IsActive, dept.CreatedAt, dept.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, deptID id.DepartmentID) (*models.Department, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, code, description, is_active, created_at, updated_at
		FROM departments WHERE id = $1`,
		deptID.String(),
	)
	return scanDepartment(row.Scan)
}

func (s *PostgresStore) Update(ctx context.Context, dept *models.Department) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE departments
		SET name = $2, code = $3, description = $4, is_active = $5, updated_at = $6
		WHERE id = $1`,
		dept.ID.String(), dept.Name, nullString(dept.Code), dept.Description,
		dept.IsActive, dept.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update department: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Department, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, code, description, is_active, created_at, updated_at
		FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var out []*models.Department
	for rows.Next() {
		dept, err := scanDepartment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, dept)
	}
	return out, rows.Err()
}

func scanDepartment(scan func(dest ...any) error) (*models.Department, error) {
	var (
		dept    models.Department
		rawID   string
		rawCode sql.NullString
	)
	err := scan(&rawID, &dept.Name, &rawCode, &dept.Description, &dept.IsActive, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan department: %w", err)
	}
	parsed, err := id.ParseDepartmentID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan department id: %w", err)
	}
	dept.ID = parsed
	dept.Code = rawCode.String
	return &dept, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
