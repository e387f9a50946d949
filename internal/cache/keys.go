package cache

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cache key builders. Key kinds double as the metric label.
const (
	kindWishlistItems = "wishlist-items"
	kindSharedLink    = "shared-link"
	kindSharedWithMe  = "shared-with-me"
	kindUserProfile   = "user-profile"
	kindWishlists     = "wishlists"
)

// WishlistItemsKey caches the item list of a wishlist.
func WishlistItemsKey(wishlistID uuid.UUID) string {
	return kindWishlistItems + ":" + wishlistID.String()
}

// SharedLinkKey caches a resolved share code.
func SharedLinkKey(code string) string {
	return kindSharedLink + ":" + code
}

// SharedWithMeKey caches the shared-with-me view of a user.
func SharedWithMeKey(userID string) string {
	return kindSharedWithMe + ":" + userID
}

// UserProfileKey caches a user profile.
func UserProfileKey(userID string) string {
	return kindUserProfile + ":" + userID
}

// WishlistsKey caches the wishlist collection of a user.
func WishlistsKey(ownerID string) string {
	return kindWishlists + ":" + ownerID
}

func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}

// TTLConfig holds the expiration for each cached view.
type TTLConfig struct {
	WishlistItems time.Duration `env:"CACHE_TTL_WISHLIST_ITEMS" envDefault:"10m"`
	SharedLink    time.Duration `env:"CACHE_TTL_SHARED_LINK" envDefault:"10m"`
	SharedWithMe  time.Duration `env:"CACHE_TTL_SHARED_WITH_ME" envDefault:"5m"`
	UserProfile   time.Duration `env:"CACHE_TTL_USER_PROFILE" envDefault:"10m"`
	Wishlists     time.Duration `env:"CACHE_TTL_WISHLISTS" envDefault:"5m"`
}
