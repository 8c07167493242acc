package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worktrack/internal/identity/models"
	id "worktrack/pkg/domain"
	"worktrack/pkg/platform/sentinel"
)

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, profile *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, department_id, phone, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET department_id = EXCLUDED.department_id,
		    phone = EXCLUDED.phone,
		    position = EXCLUDED.position`,
		profile.UserID.String(), nullDepartment(profile.DepartmentID), profile.Phone, profile.Position,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, department_id, phone, position
		FROM user_profiles WHERE user_id = $1`,
		userID.String(),
	)

	var (
		profile models.Profile
		rawUser string
		rawDept sql.NullString
	)
	if err := row.Scan(&rawUser, &rawDept, &profile.Phone, &profile.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	parsedUser, err := id.ParseUserID(rawUser)
	if err != nil {
		return nil, fmt.Errorf("scan profile user id: %w", err)
	}
	profile.UserID = parsedUser

	if rawDept.Valid {
		parsedDept, err := id.ParseDepartmentID(rawDept.String)
		if err != nil {
			return nil, fmt.Errorf("scan profile department id: %w", err)
		}
		profile.DepartmentID = &parsedDept
	}
	return &profile, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID.String())
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
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

func nullDepartment(deptID *id.DepartmentID) sql.NullString {
	if deptID == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: deptID.String(), Valid: true}
}
