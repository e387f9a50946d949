package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/wishwell/internal/cache"
	"github.com/utafrali/wishwell/internal/domain"
	"github.com/utafrali/wishwell/internal/event"
	"github.com/utafrali/wishwell/internal/repository"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

// shareCodeBytes is the entropy of a generated share code. 18 bytes encode
// to a 24-character URL-safe string.
const shareCodeBytes = 18

// resolvedLinkPayload is the cached form of a resolved share code. It keeps
// the link row so repeat resolutions served from cache can still record
// visits.
type resolvedLinkPayload struct {
	Link     domain.SharedLink `json:"link"`
	Wishlist domain.Wishlist   `json:"wishlist"`
	Owner    domain.User       `json:"owner"`
}

// SharedLinkService implements the business logic for shareable wishlist
// links: idempotent link creation, public resolution with visit tracking and
// the shared-with-me aggregate.
type SharedLinkService struct {
	links     repository.SharedLinkRepository
	wishlists repository.WishlistRepository
	items     repository.ItemRepository
	users     repository.UserRepository
	cache     *cache.Cache
	ttls      cache.TTLConfig
	producer  *event.Producer
	logger    *slog.Logger
}

// NewSharedLinkService creates a new shared link service.
func NewSharedLinkService(
	links repository.SharedLinkRepository,
	wishlists repository.WishlistRepository,
	items repository.ItemRepository,
	users repository.UserRepository,
	c *cache.Cache,
	ttls cache.TTLConfig,
	producer *event.Producer,
	logger *slog.Logger,
) *SharedLinkService {
	return &SharedLinkService{
		links:     links,
		wishlists: wishlists,
		items:     items,
		users:     users,
		cache:     c,
		ttls:      ttls,
		producer:  producer,
		logger:    logger,
	}
}

// GetOrCreateShareLink returns the wishlist's share link, creating it on
// first call. Repeated and concurrent calls converge on one link: losers of
// the insert race re-read the winner's row.
func (s *SharedLinkService) GetOrCreateShareLink(ctx context.Context, callerID string, wishlistID uuid.UUID) (*domain.SharedLink, error) {
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

	existing, err := s.links.GetByWishlist(ctx, wishlistID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, storeError("get shared link", err)
	}

	code, err := generateShareCode()
	if err != nil {
		return nil, fmt.Errorf("generate share code: %w", err)
	}

	link := &domain.SharedLink{
		ID:         uuid.New(),
		WishlistID: wishlistID,
		ShareCode:  code,
		CreatedBy:  callerID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Lost the creation race. The winner's link is the link.
			winner, getErr := s.links.GetByWishlist(ctx, wishlistID)
			if getErr != nil {
				return nil, storeError("get shared link after race", getErr)
			}
			return winner, nil
		}
		return nil, storeError("create shared link", err)
	}

	if err := s.producer.PublishLinkCreated(ctx, link); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish link.created event",
			slog.String("link_id", link.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "shared link created",
		slog.String("link_id", link.ID.String()),
		slog.String("wishlist_id", wishlistID.String()),
	)

	return link, nil
}

// ResolveShareLink returns the wishlist behind a share code. The code is a
// public capability, so no ownership check applies; callerID may be empty
// for anonymous readers. Authenticated non-owner readers get a visit
// recorded best-effort, never at the expense of the response.
func (s *SharedLinkService) ResolveShareLink(ctx context.Context, callerID, code string) (*domain.ResolvedWishlist, error) {
	if code == "" {
		return nil, apperrors.InvalidInput("share code is required")
	}

	key := cache.SharedLinkKey(code)

	var payload resolvedLinkPayload
	if !s.cache.Get(ctx, key, &payload) {
		loaded, err := s.loadResolvedLink(ctx, code)
		if err != nil {
			return nil, err
		}
		payload = *loaded
		s.cache.Set(ctx, key, payload, s.ttls.SharedLink)
	}

	if callerID != "" && callerID != payload.Owner.ID {
		s.recordVisit(ctx, &payload.Link, callerID)
	}

	return &domain.ResolvedWishlist{
		Wishlist:  payload.Wishlist,
		Owner:     payload.Owner,
		ShareCode: code,
	}, nil
}

// ListSharedWithMe returns every wishlist the caller has opened through a
// shared link, grouped by owning user, cache first.
func (s *SharedLinkService) ListSharedWithMe(ctx context.Context, callerID string) ([]domain.SharedWishlistGroup, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	key := cache.SharedWithMeKey(callerID)

	var cached []domain.SharedWishlistGroup
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	groups, err := s.links.ListVisitedWishlists(ctx, callerID)
	if err != nil {
		return nil, storeError("list visited wishlists", err)
	}

	for gi := range groups {
		for wi := range groups[gi].Wishlists {
			w := &groups[gi].Wishlists[wi]
			items, err := s.items.ListByWishlist(ctx, w.ID)
			if err != nil {
				return nil, storeError("list shared wishlist items", err)
			}
			w.Items = items
		}
	}

	s.cache.Set(ctx, key, groups, s.ttls.SharedWithMe)

	return groups, nil
}

// loadResolvedLink assembles the resolved view of a share code from the store.
func (s *SharedLinkService) loadResolvedLink(ctx context.Context, code string) (*resolvedLinkPayload, error) {
	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("shared link", code)
		}
		return nil, storeError("get shared link by code", err)
	}

	wishlist, err := s.wishlists.GetByID(ctx, link.WishlistID)
	if err != nil {
		return nil, storeError("get shared wishlist", err)
	}

	items, err := s.items.ListByWishlist(ctx, link.WishlistID)
	if err != nil {
		return nil, storeError("list shared wishlist items", err)
	}
	wishlist.Items = items

	owner, err := s.users.GetByID(ctx, wishlist.OwnerID)
	if err != nil {
		return nil, storeError("get wishlist owner", err)
	}

	return &resolvedLinkPayload{
		Link:     *link,
		Wishlist: *wishlist,
		Owner:    *owner,
	}, nil
}

// recordVisit writes the (link, caller) visit row and drops the caller's
// shared-with-me cache entry. Fire and forget: any failure is logged and the
// read response proceeds untouched.
func (s *SharedLinkService) recordVisit(ctx context.Context, link *domain.SharedLink, callerID string) {
	visit := &domain.SharedLinkVisit{
		ID:           uuid.New(),
		SharedLinkID: link.ID,
		UserID:       callerID,
		VisitedAt:    time.Now().UTC(),
	}

	if err := s.links.RecordVisit(ctx, visit); err != nil {
		s.logger.WarnContext(ctx, "failed to record shared link visit",
			slog.String("link_id", link.ID.String()),
			slog.String("user_id", callerID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.cache.Remove(ctx, cache.SharedWithMeKey(callerID))

	if err := s.producer.PublishLinkVisited(ctx, link, callerID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish link.visited event",
			slog.String("link_id", link.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// generateShareCode returns an unguessable URL-safe token.
func generateShareCode() (string, error) {
	buf := make([]byte, shareCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
