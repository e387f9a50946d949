package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/wishwell/internal/domain"
	"github.com/utafrali/wishwell/pkg/database"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	pool database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// Create inserts a new wishlist.
func (r *WishlistRepository) Create(ctx context.Context, wishlist *domain.Wishlist) error {
	query := `
		INSERT INTO wishlists (id, owner_id, name, is_public, rank, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		wishlist.ID,
		wishlist.OwnerID,
		wishlist.Name,
		wishlist.IsPublic,
		wishlist.Rank,
		wishlist.CreatedAt,
		wishlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create wishlist: %w", err)
	}

	return nil
}

// GetByID retrieves a wishlist by ID, without its items.
func (r *WishlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wishlist, error) {
	query := `
		SELECT id, owner_id, name, is_public, rank, created_at, updated_at
		FROM wishlists
		WHERE id = $1`

	var w domain.Wishlist
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.OwnerID,
		&w.Name,
		&w.IsPublic,
		&w.Rank,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get wishlist by id: %w", err)
	}

	return &w, nil
}

// ListByOwner returns all wishlists owned by a user, ordered by rank.
func (r *WishlistRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Wishlist, error) {
	query := `
		SELECT id, owner_id, name, is_public, rank, created_at, updated_at
		FROM wishlists
		WHERE owner_id = $1
		ORDER BY rank ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list wishlists by owner: %w", err)
	}
	defer rows.Close()

	var wishlists []domain.Wishlist
	for rows.Next() {
		var w domain.Wishlist
		if err := rows.Scan(
			&w.ID,
			&w.OwnerID,
			&w.Name,
			&w.IsPublic,
			&w.Rank,
			&w.CreatedAt,
			&w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist row: %w", err)
		}
		wishlists = append(wishlists, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	if wishlists == nil {
		wishlists = []domain.Wishlist{}
	}

	return wishlists, nil
}

// Update updates a wishlist's name and visibility.
func (r *WishlistRepository) Update(ctx context.Context, wishlist *domain.Wishlist) error {
	query := `
		UPDATE wishlists
		SET name = $1, is_public = $2, updated_at = NOW()
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, wishlist.Name, wishlist.IsPublic, wishlist.ID)
	if err != nil {
		return fmt.Errorf("update wishlist: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist", wishlist.ID.String())
	}

	return nil
}

// UpdateRanks reorders a user's wishlists atomically.
func (r *WishlistRepository) UpdateRanks(ctx context.Context, ownerID string, orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE wishlists
		SET rank = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3`

	for rank, id := range orderedIDs {
		if _, err := tx.Exec(ctx, query, rank, id, ownerID); err != nil {
			return fmt.Errorf("update wishlist rank: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a wishlist and cascades to its items, link and visits.
func (r *WishlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM wishlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist", id.String())
	}

	return nil
}
