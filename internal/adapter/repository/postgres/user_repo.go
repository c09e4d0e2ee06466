package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// userRepository implements domain.UserRepository
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.AppUser, error) {
	query := `
		SELECT id, subject_uid, email, full_name, is_admin, status, created_at
		FROM app_users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) FindBySubjectUID(ctx context.Context, subjectUID string) (*domain.AppUser, error) {
	query := `
		SELECT id, subject_uid, email, full_name, is_admin, status, created_at
		FROM app_users
		WHERE subject_uid = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, subjectUID))
}

func (r *userRepository) FindAll(ctx context.Context) ([]*domain.AppUser, error) {
	query := `
		SELECT id, subject_uid, email, full_name, is_admin, status, created_at
		FROM app_users
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.AppUser, 0)
	for rows.Next() {
		var u domain.AppUser
		if err := rows.Scan(&u.ID, &u.SubjectUID, &u.Email, &u.FullName, &u.IsAdmin, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *userRepository) Create(ctx context.Context, user *domain.AppUser) error {
	query := `
		INSERT INTO app_users (subject_uid, email, full_name, is_admin, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.SubjectUID,
		user.Email,
		user.FullName,
		user.IsAdmin,
		string(user.Status),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", mapError(err))
	}
	return nil
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.AppUser, error) {
	var u domain.AppUser
	err := row.Scan(&u.ID, &u.SubjectUID, &u.Email, &u.FullName, &u.IsAdmin, &u.Status, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
