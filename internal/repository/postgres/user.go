package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/wishwell/internal/domain"
	"github.com/utafrali/wishwell/pkg/database"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by their identity provider subject.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, display_name, photo_url, created_at, updated_at
		FROM users
		WHERE id = $1`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.PhotoURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &u, nil
}

// Upsert inserts a user or refreshes email and display name if the user already exists.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, display_name, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING id, email, display_name, photo_url, created_at, updated_at`

	var result domain.User
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PhotoURL,
	).Scan(
		&result.ID,
		&result.Email,
		&result.DisplayName,
		&result.PhotoURL,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return &result, nil
}

// UpdateProfile updates the mutable profile fields of a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		UPDATE users
		SET display_name = $1, photo_url = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, email, display_name, photo_url, created_at, updated_at`

	var result domain.User
	err := r.pool.QueryRow(ctx, query,
		user.DisplayName,
		user.PhotoURL,
		user.ID,
	).Scan(
		&result.ID,
		&result.Email,
		&result.DisplayName,
		&result.PhotoURL,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", user.ID)
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}

	return &result, nil
}
