package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"worktrack/internal/identity/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfUsernameAvailable(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, is_superuser, is_staff, role_names, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID.String(), user.Username, user.IsSuperuser, user.IsStaff,
		pq.Array(user.RoleNames), user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, is_superuser, is_staff, role_names, created_at
		FROM users WHERE id = $1`,
		userID.String(),
	)
	return scanUser(row)
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = $2, is_superuser = $3, is_staff = $4, role_names = $5
		WHERE id = $1`,
		user.ID.String(), user.Username, user.IsSuperuser, user.IsStaff,
		pq.Array(user.RoleNames),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRowAffected(res)
}

// Delete removes the user. The profile cascades away; a foreign key
// restriction fires when the user is still referenced by a task.
func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID.String())
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrProtected
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRowAffected(res)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user  models.User
		rawID string
		roles pq.StringArray
	)
	err := row.Scan(&rawID, &user.Username, &user.IsSuperuser, &user.IsStaff, &roles, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	parsed, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan user id: %w", err)
	}
	user.ID = parsed
	user.RoleNames = roles
	return &user, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Postgres error codes for constraint violations.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation
}
