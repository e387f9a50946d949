package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/utafrali/wishwell/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// GetByID retrieves a user by their identity provider subject.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// Upsert inserts a user or refreshes email and display name if the user
	// already exists (idempotent, called on first authenticated request).
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)

	// UpdateProfile updates the mutable profile fields of a user.
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
}

// WishlistRepository defines the interface for wishlist persistence operations.
type WishlistRepository interface {
	// Create inserts a new wishlist.
	Create(ctx context.Context, wishlist *domain.Wishlist) error

	// GetByID retrieves a wishlist by ID, without its items.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wishlist, error)

	// ListByOwner returns all wishlists owned by a user, ordered by rank.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Wishlist, error)

	// Update updates a wishlist's name and visibility.
	Update(ctx context.Context, wishlist *domain.Wishlist) error

	// UpdateRanks reorders a user's wishlists atomically. IDs not owned by
	// the user are ignored.
	UpdateRanks(ctx context.Context, ownerID string, orderedIDs []uuid.UUID) error

	// Delete removes a wishlist and cascades to its items, link and visits.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepository defines the interface for wishlist item persistence operations.
type ItemRepository interface {
	// Create inserts a new wishlist item.
	Create(ctx context.Context, item *domain.WishlistItem) error

	// GetByID retrieves an item by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WishlistItem, error)

	// ListByWishlist returns all items on a wishlist, oldest first.
	ListByWishlist(ctx context.Context, wishlistID uuid.UUID) ([]domain.WishlistItem, error)

	// Update updates an item's name and link. Reservation state is never
	// touched by this method.
	Update(ctx context.Context, item *domain.WishlistItem) error

	// Delete removes an item.
	Delete(ctx context.Context, id uuid.UUID) error

	// ToggleReservation flips the reservation state of an item on behalf of
	// userID inside a single transaction. Owners can never reserve their own
	// items, a user holds at most one reservation per wishlist, and only the
	// reserving user can release.
	ToggleReservation(ctx context.Context, itemID uuid.UUID, userID string) (*domain.ReservationResult, error)
}

// SharedLinkRepository defines the interface for shared link persistence operations.
type SharedLinkRepository interface {
	// Create inserts a new shared link for a wishlist.
	Create(ctx context.Context, link *domain.SharedLink) error

	// GetByWishlist retrieves the shared link of a wishlist, if one exists.
	GetByWishlist(ctx context.Context, wishlistID uuid.UUID) (*domain.SharedLink, error)

	// GetByCode retrieves a shared link by its share code.
	GetByCode(ctx context.Context, code string) (*domain.SharedLink, error)

	// RecordVisit inserts a visit row for (link, user). Repeat visits by the
	// same user are absorbed without error.
	RecordVisit(ctx context.Context, visit *domain.SharedLinkVisit) error

	// ListVisitedWishlists returns the wishlists a user has opened through
	// shared links, grouped by owning user.
	ListVisitedWishlists(ctx context.Context, userID string) ([]domain.SharedWishlistGroup, error)
}
