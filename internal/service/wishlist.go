package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/wishwell/internal/cache"
	"github.com/utafrali/wishwell/internal/domain"
	"github.com/utafrali/wishwell/internal/event"
	"github.com/utafrali/wishwell/internal/repository"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

// CreateWishlistInput holds the parameters for creating a wishlist.
type CreateWishlistInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	IsPublic bool   `json:"is_public"`
}

// UpdateWishlistInput holds the parameters for renaming a wishlist or
// changing its visibility.
type UpdateWishlistInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	IsPublic bool   `json:"is_public"`
}

// ReorderWishlistsInput holds the new ordering of a user's wishlists.
type ReorderWishlistsInput struct {
	WishlistIDs []uuid.UUID `json:"wishlist_ids" validate:"required,min=1"`
}

// ItemInput holds the parameters for adding or updating a wishlist item.
type ItemInput struct {
	Name string  `json:"name" validate:"required,max=200"`
	Link *string `json:"link" validate:"omitempty,url,max=2000"`
}

// WishlistService implements the business logic for wishlists, their items
// and the reservation state machine. Every mutation commits to the store
// first and then drops the cache keys its result can appear under.
type WishlistService struct {
	wishlists repository.WishlistRepository
	items     repository.ItemRepository
	links     repository.SharedLinkRepository
	cache     *cache.Cache
	ttls      cache.TTLConfig
	producer  *event.Producer
	logger    *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	wishlists repository.WishlistRepository,
	items repository.ItemRepository,
	links repository.SharedLinkRepository,
	c *cache.Cache,
	ttls cache.TTLConfig,
	producer *event.Producer,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		wishlists: wishlists,
		items:     items,
		links:     links,
		cache:     c,
		ttls:      ttls,
		producer:  producer,
		logger:    logger,
	}
}

// CreateWishlist creates a new wishlist at the end of the owner's ordering.
func (s *WishlistService) CreateWishlist(ctx context.Context, ownerID string, input CreateWishlistInput) (*domain.Wishlist, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	existing, err := s.wishlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("list wishlists for rank", err)
	}

	now := time.Now().UTC()
	wishlist := &domain.Wishlist{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      input.Name,
		IsPublic:  input.IsPublic,
		Rank:      len(existing),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.wishlists.Create(ctx, wishlist); err != nil {
		return nil, storeError("create wishlist", err)
	}

	s.cache.Remove(ctx, cache.WishlistsKey(ownerID))

	s.logger.InfoContext(ctx, "wishlist created",
		slog.String("wishlist_id", wishlist.ID.String()),
		slog.String("owner_id", ownerID),
	)

	return wishlist, nil
}

// ListWishlists returns the caller's wishlists in rank order, cache first.
func (s *WishlistService) ListWishlists(ctx context.Context, ownerID string) ([]domain.Wishlist, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	key := cache.WishlistsKey(ownerID)

	var cached []domain.Wishlist
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	wishlists, err := s.wishlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("list wishlists", err)
	}

	s.cache.Set(ctx, key, wishlists, s.ttls.Wishlists)

	return wishlists, nil
}

// GetWishlist returns one of the caller's wishlists with its items attached.
func (s *WishlistService) GetWishlist(ctx context.Context, callerID string, wishlistID uuid.UUID) (*domain.Wishlist, error) {
	wishlist, err := s.ownedWishlist(ctx, callerID, wishlistID)
	if err != nil {
		return nil, err
	}

	items, err := s.cachedItems(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	wishlist.Items = items

	return wishlist, nil
}

// UpdateWishlist renames a wishlist or changes its visibility.
func (s *WishlistService) UpdateWishlist(ctx context.Context, callerID string, wishlistID uuid.UUID, input UpdateWishlistInput) (*domain.Wishlist, error) {
	wishlist, err := s.ownedWishlist(ctx, callerID, wishlistID)
	if err != nil {
		return nil, err
	}

	wishlist.Name = input.Name
	wishlist.IsPublic = input.IsPublic

	if err := s.wishlists.Update(ctx, wishlist); err != nil {
		return nil, storeError("update wishlist", err)
	}

	s.invalidateWishlistViews(ctx, wishlist, false)

	return wishlist, nil
}

// ReorderWishlists applies a new ordering to the caller's wishlists.
func (s *WishlistService) ReorderWishlists(ctx context.Context, ownerID string, input ReorderWishlistsInput) error {
	if ownerID == "" {
		return apperrors.Unauthorized("caller identity is required")
	}
	if len(input.WishlistIDs) == 0 {
		return apperrors.InvalidInput("wishlist ids are required")
	}

	if err := s.wishlists.UpdateRanks(ctx, ownerID, input.WishlistIDs); err != nil {
		return storeError("reorder wishlists", err)
	}

	s.cache.Remove(ctx, cache.WishlistsKey(ownerID))

	return nil
}

// DeleteWishlist removes a wishlist. Items, the shared link and its visits
// go with it by cascade.
func (s *WishlistService) DeleteWishlist(ctx context.Context, callerID string, wishlistID uuid.UUID) error {
	_, err := s.ownedWishlist(ctx, callerID, wishlistID)
	if err != nil {
		return err
	}

	// Resolve the share code before the row disappears so its cache entry
	// can be dropped too.
	code := s.shareCodeFor(ctx, wishlistID)

	if err := s.wishlists.Delete(ctx, wishlistID); err != nil {
		return storeError("delete wishlist", err)
	}

	keys := []string{cache.WishlistsKey(callerID), cache.WishlistItemsKey(wishlistID)}
	if code != "" {
		keys = append(keys, cache.SharedLinkKey(code))
	}
	s.cache.Remove(ctx, keys...)

	s.logger.InfoContext(ctx, "wishlist deleted",
		slog.String("wishlist_id", wishlistID.String()),
		slog.String("owner_id", callerID),
	)

	return nil
}

// AddItem adds an item to one of the caller's wishlists.
func (s *WishlistService) AddItem(ctx context.Context, callerID string, wishlistID uuid.UUID, input ItemInput) (*domain.WishlistItem, error) {
	wishlist, err := s.ownedWishlist(ctx, callerID, wishlistID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &domain.WishlistItem{
		ID:         uuid.New(),
		WishlistID: wishlistID,
		Name:       input.Name,
		Link:       input.Link,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, storeError("add wishlist item", err)
	}

	s.invalidateWishlistViews(ctx, wishlist, true)

	return item, nil
}

// UpdateItem updates the name and link of an item on one of the caller's
// wishlists. Reservation state is out of reach here.
func (s *WishlistService) UpdateItem(ctx context.Context, callerID string, itemID uuid.UUID, input ItemInput) (*domain.WishlistItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, storeError("get wishlist item", err)
	}

	wishlist, err := s.ownedWishlist(ctx, callerID, item.WishlistID)
	if err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.Link = input.Link

	if err := s.items.Update(ctx, item); err != nil {
		return nil, storeError("update wishlist item", err)
	}

	s.invalidateWishlistViews(ctx, wishlist, true)

	return item, nil
}

// DeleteItem removes an item from one of the caller's wishlists.
func (s *WishlistService) DeleteItem(ctx context.Context, callerID string, itemID uuid.UUID) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return storeError("get wishlist item", err)
	}

	wishlist, err := s.ownedWishlist(ctx, callerID, item.WishlistID)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return storeError("delete wishlist item", err)
	}

	s.invalidateWishlistViews(ctx, wishlist, true)

	return nil
}

// ListItems returns the items of one of the caller's wishlists, cache first.
func (s *WishlistService) ListItems(ctx context.Context, callerID string, wishlistID uuid.UUID) ([]domain.WishlistItem, error) {
	if _, err := s.ownedWishlist(ctx, callerID, wishlistID); err != nil {
		return nil, err
	}
	return s.cachedItems(ctx, wishlistID)
}

// ToggleReservation reserves a free item for the caller or releases the
// caller's existing reservation. The rule checks live in the store
// transaction; this layer adds identity validation, cache invalidation and
// the domain event.
func (s *WishlistService) ToggleReservation(ctx context.Context, callerID string, itemID uuid.UUID) (*domain.ReservationResult, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	result, err := s.items.ToggleReservation(ctx, itemID, callerID)
	if err != nil {
		return nil, storeError("toggle reservation", err)
	}

	keys := []string{cache.WishlistItemsKey(result.Item.WishlistID)}
	if code := s.shareCodeFor(ctx, result.Item.WishlistID); code != "" {
		keys = append(keys, cache.SharedLinkKey(code))
	}
	s.cache.Remove(ctx, keys...)

	if err := s.producer.PublishReservationChanged(ctx, result, callerID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish reservation event",
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "reservation toggled",
		slog.String("item_id", itemID.String()),
		slog.String("wishlist_id", result.Item.WishlistID.String()),
		slog.Bool("reserved", result.Reserved),
	)

	return result, nil
}

// ownedWishlist loads a wishlist and verifies the caller owns it.
func (s *WishlistService) ownedWishlist(ctx context.Context, callerID string, wishlistID uuid.UUID) (*domain.Wishlist, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	wishlist, err := s.wishlists.GetByID(ctx, wishlistID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("wishlist", wishlistID.String())
		}
		return nil, storeError("get wishlist", err)
	}

	if wishlist.OwnerID != callerID {
		return nil, apperrors.Forbidden("not the wishlist owner")
	}

	return wishlist, nil
}

// cachedItems reads a wishlist's items cache first, populating on miss.
func (s *WishlistService) cachedItems(ctx context.Context, wishlistID uuid.UUID) ([]domain.WishlistItem, error) {
	key := cache.WishlistItemsKey(wishlistID)

	var cached []domain.WishlistItem
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	items, err := s.items.ListByWishlist(ctx, wishlistID)
	if err != nil {
		return nil, storeError("list wishlist items", err)
	}

	s.cache.Set(ctx, key, items, s.ttls.WishlistItems)

	return items, nil
}

// invalidateWishlistViews drops every cache key the given wishlist's state
// can appear under. withItems also drops the item-list key.
func (s *WishlistService) invalidateWishlistViews(ctx context.Context, wishlist *domain.Wishlist, withItems bool) {
	keys := []string{cache.WishlistsKey(wishlist.OwnerID)}
	if withItems {
		keys = append(keys, cache.WishlistItemsKey(wishlist.ID))
	}
	if code := s.shareCodeFor(ctx, wishlist.ID); code != "" {
		keys = append(keys, cache.SharedLinkKey(code))
	}
	s.cache.Remove(ctx, keys...)
}

// shareCodeFor returns the wishlist's share code, or empty when no link
// exists or the lookup fails. Failures only widen the staleness window of
// the resolved-link cache entry, so they are logged and ignored.
func (s *WishlistService) shareCodeFor(ctx context.Context, wishlistID uuid.UUID) string {
	link, err := s.links.GetByWishlist(ctx, wishlistID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "share link lookup for invalidation failed",
				slog.String("wishlist_id", wishlistID.String()),
				slog.String("error", err.Error()),
			)
		}
		return ""
	}
	return link.ShareCode
}
