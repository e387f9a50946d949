package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist represents an ordered collection of gift items owned by a user.
type Wishlist struct {
	ID        uuid.UUID      `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Name      string         `json:"name"`
	IsPublic  bool           `json:"is_public"`
	Rank      int            `json:"rank"`
	Items     []WishlistItem `json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// WishlistItem represents a single gift entry on a wishlist. ReservedBy is
// set only while IsReserved is true and is never exposed to the list owner.
type WishlistItem struct {
	ID         uuid.UUID `json:"id"`
	WishlistID uuid.UUID `json:"wishlist_id"`
	Name       string    `json:"name"`
	Link       *string   `json:"link,omitempty"`
	IsReserved bool      `json:"is_reserved"`
	ReservedBy *string   `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsReservedBy returns true if the item is currently reserved by the given user.
func (i *WishlistItem) IsReservedBy(userID string) bool {
	return i.IsReserved && i.ReservedBy != nil && *i.ReservedBy == userID
}

// ReservationResult describes the outcome of a reservation toggle.
type ReservationResult struct {
	Item     WishlistItem `json:"item"`
	Reserved bool         `json:"reserved"`
}
