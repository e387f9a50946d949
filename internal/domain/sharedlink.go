package domain

import (
	"time"

	"github.com/google/uuid"
)

// SharedLink grants read access to a wishlist through an opaque share code.
// A wishlist has at most one shared link for its lifetime.
type SharedLink struct {
	ID         uuid.UUID `json:"id"`
	WishlistID uuid.UUID `json:"wishlist_id"`
	ShareCode  string    `json:"share_code"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// SharedLinkVisit records that a user opened a shared link. At most one
// visit row exists per (link, user) pair.
type SharedLinkVisit struct {
	ID           uuid.UUID `json:"id"`
	SharedLinkID uuid.UUID `json:"shared_link_id"`
	UserID       string    `json:"user_id"`
	VisitedAt    time.Time `json:"visited_at"`
}

// ResolvedWishlist is the guest view of a wishlist reached through a share
// code. Owner identifies whose list it is; reservation attribution on the
// embedded items stays hidden.
type ResolvedWishlist struct {
	Wishlist  Wishlist `json:"wishlist"`
	Owner     User     `json:"owner"`
	ShareCode string   `json:"share_code"`
}

// SharedWishlistGroup collects the wishlists a user has visited, grouped by
// the owning user.
type SharedWishlistGroup struct {
	Owner     User       `json:"owner"`
	Wishlists []Wishlist `json:"wishlists"`
}
