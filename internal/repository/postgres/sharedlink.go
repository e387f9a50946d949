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

// SharedLinkRepository implements repository.SharedLinkRepository using PostgreSQL.
type SharedLinkRepository struct {
	pool database.DBTX
}

// NewSharedLinkRepository creates a new PostgreSQL-backed shared link repository.
func NewSharedLinkRepository(pool database.DBTX) *SharedLinkRepository {
	return &SharedLinkRepository{pool: pool}
}

// Create inserts a new shared link for a wishlist. A second link for the same
// wishlist trips the unique constraint and surfaces as ErrAlreadyExists so the
// caller can re-read the winner.
func (r *SharedLinkRepository) Create(ctx context.Context, link *domain.SharedLink) error {
	query := `
		INSERT INTO shared_links (id, wishlist_id, share_code, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.WishlistID,
		link.ShareCode,
		link.CreatedBy,
		link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return fmt.Errorf("create shared link: %w", err)
	}

	return nil
}

// GetByWishlist retrieves the shared link of a wishlist, if one exists.
func (r *SharedLinkRepository) GetByWishlist(ctx context.Context, wishlistID uuid.UUID) (*domain.SharedLink, error) {
	query := `
		SELECT id, wishlist_id, share_code, created_by, created_at
		FROM shared_links
		WHERE wishlist_id = $1`

	return r.scanLink(r.pool.QueryRow(ctx, query, wishlistID), "get shared link by wishlist")
}

// GetByCode retrieves a shared link by its share code.
func (r *SharedLinkRepository) GetByCode(ctx context.Context, code string) (*domain.SharedLink, error) {
	query := `
		SELECT id, wishlist_id, share_code, created_by, created_at
		FROM shared_links
		WHERE share_code = $1`

	return r.scanLink(r.pool.QueryRow(ctx, query, code), "get shared link by code")
}

func (r *SharedLinkRepository) scanLink(row pgx.Row, op string) (*domain.SharedLink, error) {
	var l domain.SharedLink
	err := row.Scan(
		&l.ID,
		&l.WishlistID,
		&l.ShareCode,
		&l.CreatedBy,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &l, nil
}

// RecordVisit inserts a visit row for (link, user). Repeat visits by the same
// user hit the unique constraint and are absorbed without error.
func (r *SharedLinkRepository) RecordVisit(ctx context.Context, visit *domain.SharedLinkVisit) error {
	query := `
		INSERT INTO shared_link_visits (id, shared_link_id, user_id, visited_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shared_link_id, user_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		visit.ID,
		visit.SharedLinkID,
		visit.UserID,
		visit.VisitedAt,
	)
	if err != nil {
		return fmt.Errorf("record shared link visit: %w", err)
	}

	return nil
}

// ListVisitedWishlists returns the wishlists a user has opened through shared
// links, grouped by owning user. Groups follow most recent visit first; their
// own lists never appear.
func (r *SharedLinkRepository) ListVisitedWishlists(ctx context.Context, userID string) ([]domain.SharedWishlistGroup, error) {
	query := `
		SELECT u.id, u.email, u.display_name, u.photo_url,
			   w.id, w.owner_id, w.name, w.is_public, w.rank, w.created_at, w.updated_at
		FROM shared_link_visits v
		JOIN shared_links sl ON sl.id = v.shared_link_id
		JOIN wishlists w ON w.id = sl.wishlist_id
		JOIN users u ON u.id = w.owner_id
		WHERE v.user_id = $1 AND w.owner_id <> $1
		ORDER BY v.visited_at DESC, w.rank ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list visited wishlists: %w", err)
	}
	defer rows.Close()

	groups := []domain.SharedWishlistGroup{}
	indexByOwner := make(map[string]int)

	for rows.Next() {
		var (
			owner domain.User
			w     domain.Wishlist
		)
		if err := rows.Scan(
			&owner.ID,
			&owner.Email,
			&owner.DisplayName,
			&owner.PhotoURL,
			&w.ID,
			&w.OwnerID,
			&w.Name,
			&w.IsPublic,
			&w.Rank,
			&w.CreatedAt,
			&w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan visited wishlist row: %w", err)
		}

		idx, ok := indexByOwner[owner.ID]
		if !ok {
			idx = len(groups)
			indexByOwner[owner.ID] = idx
			groups = append(groups, domain.SharedWishlistGroup{Owner: owner})
		}
		groups[idx].Wishlists = append(groups[idx].Wishlists, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visited wishlist rows: %w", err)
	}

	return groups, nil
}
