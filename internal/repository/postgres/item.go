package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/wishwell/internal/domain"
	"github.com/utafrali/wishwell/pkg/database"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

// ItemRepository implements repository.ItemRepository using PostgreSQL.
type ItemRepository struct {
	pool database.DBTX
}

// NewItemRepository creates a new PostgreSQL-backed wishlist item repository.
func NewItemRepository(pool database.DBTX) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// Create inserts a new wishlist item.
func (r *ItemRepository) Create(ctx context.Context, item *domain.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (id, wishlist_id, name, link, is_reserved, reserved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.WishlistID,
		item.Name,
		item.Link,
		item.IsReserved,
		item.ReservedBy,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create wishlist item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by ID.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WishlistItem, error) {
	query := `
		SELECT id, wishlist_id, name, link, is_reserved, reserved_by, created_at, updated_at
		FROM wishlist_items
		WHERE id = $1`

	var item domain.WishlistItem
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.WishlistID,
		&item.Name,
		&item.Link,
		&item.IsReserved,
		&item.ReservedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get wishlist item by id: %w", err)
	}

	return &item, nil
}

// ListByWishlist returns all items on a wishlist, oldest first.
func (r *ItemRepository) ListByWishlist(ctx context.Context, wishlistID uuid.UUID) ([]domain.WishlistItem, error) {
	query := `
		SELECT id, wishlist_id, name, link, is_reserved, reserved_by, created_at, updated_at
		FROM wishlist_items
		WHERE wishlist_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	var items []domain.WishlistItem
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(
			&item.ID,
			&item.WishlistID,
			&item.Name,
			&item.Link,
			&item.IsReserved,
			&item.ReservedBy,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist item rows: %w", err)
	}

	if items == nil {
		items = []domain.WishlistItem{}
	}

	return items, nil
}

// Update updates an item's name and link.
func (r *ItemRepository) Update(ctx context.Context, item *domain.WishlistItem) error {
	query := `
		UPDATE wishlist_items
		SET name = $1, link = $2, updated_at = NOW()
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, item.Name, item.Link, item.ID)
	if err != nil {
		return fmt.Errorf("update wishlist item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", item.ID.String())
	}

	return nil
}

// Delete removes an item.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", id.String())
	}

	return nil
}

// ToggleReservation flips the reservation state of an item on behalf of userID.
// The row lock, the rule checks and the write run in one transaction so that
// concurrent toggles serialize on the item row.
func (r *ItemRepository) ToggleReservation(ctx context.Context, itemID uuid.UUID, userID string) (*domain.ReservationResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockQuery := `
		SELECT i.id, i.wishlist_id, i.name, i.link, i.is_reserved, i.reserved_by, i.created_at, i.updated_at, w.owner_id
		FROM wishlist_items i
		JOIN wishlists w ON w.id = i.wishlist_id
		WHERE i.id = $1
		FOR UPDATE OF i`

	var (
		item    domain.WishlistItem
		ownerID string
	)
	err = tx.QueryRow(ctx, lockQuery, itemID).Scan(
		&item.ID,
		&item.WishlistID,
		&item.Name,
		&item.Link,
		&item.IsReserved,
		&item.ReservedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
		&ownerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("lock wishlist item: %w", err)
	}

	// The owner rule is absolute and checked before any state inspection.
	if ownerID == userID {
		return nil, apperrors.InvariantViolation("cannot reserve an item on your own wishlist")
	}

	if item.IsReserved {
		if item.ReservedBy == nil || *item.ReservedBy != userID {
			return nil, apperrors.Forbidden("item is reserved by another user")
		}
		released, err := r.writeReservation(ctx, tx, itemID, false, nil)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit transaction: %w", err)
		}
		return &domain.ReservationResult{Item: *released, Reserved: false}, nil
	}

	// One reservation per wishlist per user. The partial unique index on
	// (wishlist_id, reserved_by) backstops this scan under races.
	siblingQuery := `
		SELECT EXISTS (
			SELECT 1 FROM wishlist_items
			WHERE wishlist_id = $1 AND reserved_by = $2 AND is_reserved AND id <> $3
		)`

	var hasOther bool
	if err := tx.QueryRow(ctx, siblingQuery, item.WishlistID, userID, itemID).Scan(&hasOther); err != nil {
		return nil, fmt.Errorf("check existing reservation: %w", err)
	}
	if hasOther {
		return nil, apperrors.InvariantViolation("user already holds a reservation on this wishlist")
	}

	reserved, err := r.writeReservation(ctx, tx, itemID, true, &userID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.InvariantViolation("user already holds a reservation on this wishlist")
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.InvariantViolation("user already holds a reservation on this wishlist")
		}
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &domain.ReservationResult{Item: *reserved, Reserved: true}, nil
}

func (r *ItemRepository) writeReservation(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reserved bool, reservedBy *string) (*domain.WishlistItem, error) {
	query := `
		UPDATE wishlist_items
		SET is_reserved = $1, reserved_by = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, wishlist_id, name, link, is_reserved, reserved_by, created_at, updated_at`

	var item domain.WishlistItem
	err := tx.QueryRow(ctx, query, reserved, reservedBy, itemID).Scan(
		&item.ID,
		&item.WishlistID,
		&item.Name,
		&item.Link,
		&item.IsReserved,
		&item.ReservedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("write reservation state: %w", err)
	}

	return &item, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
