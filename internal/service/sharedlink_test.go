package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/wishwell/internal/cache"
	"github.com/utafrali/wishwell/internal/domain"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

type sharedLinkServiceDeps struct {
	links     *mockSharedLinkRepository
	wishlists *mockWishlistRepository
	items     *mockItemRepository
	users     *mockUserRepository
	cache     *cache.Cache
}

func newTestSharedLinkService(t *testing.T) (*SharedLinkService, *sharedLinkServiceDeps) {
	t.Helper()
	deps := &sharedLinkServiceDeps{
		links:     new(mockSharedLinkRepository),
		wishlists: new(mockWishlistRepository),
		items:     new(mockItemRepository),
		users:     new(mockUserRepository),
	}
	c, _ := newTestCache(t)
	deps.cache = c
	svc := NewSharedLinkService(deps.links, deps.wishlists, deps.items, deps.users, c, testTTLs(), newTestProducer(), newTestLogger())
	return svc, deps
}

func linkFixture(wishlistID uuid.UUID) *domain.SharedLink {
	return &domain.SharedLink{
		ID:         uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		WishlistID: wishlistID,
		ShareCode:  "hJ3kPq9RtY2w",
		CreatedBy:  "owner-1",
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// --- GetOrCreateShareLink ---

func TestGetOrCreateShareLink_CreatesOnFirstCall(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	deps.wishlists.On("GetByID", ctx, w.ID).Return(w, nil)
	deps.links.On("GetByWishlist", ctx, w.ID).Return(nil, apperrors.ErrNotFound)
	deps.links.On("Create", ctx, mock.AnythingOfType("*domain.SharedLink")).Return(nil)

	link, err := svc.GetOrCreateShareLink(ctx, "owner-1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, link.WishlistID)
	assert.NotEmpty(t, link.ShareCode)
	assert.Equal(t, "owner-1", link.CreatedBy)

	deps.links.AssertExpectations(t)
}

func TestGetOrCreateShareLink_Idempotent(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	existing := linkFixture(w.ID)
	deps.wishlists.On("GetByID", ctx, w.ID).Return(w, nil)
	deps.links.On("GetByWishlist", ctx, w.ID).Return(existing, nil)

	first, err := svc.GetOrCreateShareLink(ctx, "owner-1", w.ID)
	require.NoError(t, err)
	second, err := svc.GetOrCreateShareLink(ctx, "owner-1", w.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ShareCode, second.ShareCode)
	deps.links.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetOrCreateShareLink_LostRaceReturnsWinner(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	winner := linkFixture(w.ID)

	deps.wishlists.On("GetByID", ctx, w.ID).Return(w, nil)
	// Pre-check sees nothing, the insert loses, the re-read finds the winner.
	deps.links.On("GetByWishlist", ctx, w.ID).Return(nil, apperrors.ErrNotFound).Once()
	deps.links.On("Create", ctx, mock.AnythingOfType("*domain.SharedLink")).Return(apperrors.ErrAlreadyExists)
	deps.links.On("GetByWishlist", ctx, w.ID).Return(winner, nil).Once()

	link, err := svc.GetOrCreateShareLink(ctx, "owner-1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, winner.ShareCode, link.ShareCode)

	deps.links.AssertExpectations(t)
}

func TestGetOrCreateShareLink_NotOwner(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	deps.wishlists.On("GetByID", ctx, w.ID).Return(w, nil)

	_, err := svc.GetOrCreateShareLink(ctx, "guest-1", w.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	deps.links.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetOrCreateShareLink_Anonymous(t *testing.T) {
	svc, _ := newTestSharedLinkService(t)

	_, err := svc.GetOrCreateShareLink(context.Background(), "", uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestGetOrCreateShareLink_WishlistNotFound(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	id := uuid.New()
	deps.wishlists.On("GetByID", ctx, id).Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetOrCreateShareLink(ctx, "owner-1", id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- ResolveShareLink ---

func expectResolveFromStore(ctx context.Context, deps *sharedLinkServiceDeps, w *domain.Wishlist, link *domain.SharedLink, owner *domain.User) {
	deps.links.On("GetByCode", ctx, link.ShareCode).Return(link, nil).Once()
	deps.wishlists.On("GetByID", ctx, w.ID).Return(w, nil).Once()
	deps.items.On("ListByWishlist", ctx, w.ID).
		Return([]domain.WishlistItem{{ID: uuid.New(), WishlistID: w.ID, Name: "headphones"}}, nil).Once()
	deps.users.On("GetByID", ctx, owner.ID).Return(owner, nil).Once()
}

func TestResolveShareLink_Anonymous(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	link := linkFixture(w.ID)
	owner := &domain.User{ID: "owner-1", DisplayName: "Alice"}
	expectResolveFromStore(ctx, deps, w, link, owner)

	resolved, err := svc.ResolveShareLink(ctx, "", link.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, w.ID, resolved.Wishlist.ID)
	assert.Equal(t, "Alice", resolved.Owner.DisplayName)
	assert.Len(t, resolved.Wishlist.Items, 1)

	// Anonymous readers leave no visit trail.
	deps.links.AssertNotCalled(t, "RecordVisit", mock.Anything, mock.Anything)
}

func TestResolveShareLink_CachedSecondRead(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	link := linkFixture(w.ID)
	owner := &domain.User{ID: "owner-1", DisplayName: "Alice"}
	expectResolveFromStore(ctx, deps, w, link, owner)

	first, err := svc.ResolveShareLink(ctx, "", link.ShareCode)
	require.NoError(t, err)

	// Store mocks were Once(); the second resolution must come from cache.
	second, err := svc.ResolveShareLink(ctx, "", link.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, first.Wishlist.ID, second.Wishlist.ID)

	deps.links.AssertExpectations(t)
}

func TestResolveShareLink_RecordsVisitForGuest(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	link := linkFixture(w.ID)
	owner := &domain.User{ID: "owner-1", DisplayName: "Alice"}
	expectResolveFromStore(ctx, deps, w, link, owner)
	deps.links.On("RecordVisit", ctx, mock.AnythingOfType("*domain.SharedLinkVisit")).Return(nil)

	_, err := svc.ResolveShareLink(ctx, "guest-1", link.ShareCode)
	require.NoError(t, err)

	deps.links.AssertCalled(t, "RecordVisit", ctx, mock.MatchedBy(func(v *domain.SharedLinkVisit) bool {
		return v.SharedLinkID == link.ID && v.UserID == "guest-1"
	}))
}

func TestResolveShareLink_VisitRecordedFromCacheHit(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	link := linkFixture(w.ID)
	owner := &domain.User{ID: "owner-1", DisplayName: "Alice"}
	expectResolveFromStore(ctx, deps, w, link, owner)
	deps.links.On("RecordVisit", ctx, mock.AnythingOfType("*domain.SharedLinkVisit")).Return(nil).Twice()

	// First read populates the cache, second is a pure cache hit. Both must
	// still record the guest's visit; the repository dedupes rows.
	_, err := svc.ResolveShareLink(ctx, "guest-1", link.ShareCode)
	require.NoError(t, err)
	_, err = svc.ResolveShareLink(ctx, "guest-1", link.ShareCode)
	require.NoError(t, err)

	deps.links.AssertExpectations(t)
}

func TestResolveShareLink_OwnerVisitNotRecorded(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	link := linkFixture(w.ID)
	owner := &domain.User{ID: "owner-1", DisplayName: "Alice"}
	expectResolveFromStore(ctx, deps, w, link, owner)

	_, err := svc.ResolveShareLink(ctx, "owner-1", link.ShareCode)
	require.NoError(t, err)

	deps.links.AssertNotCalled(t, "RecordVisit", mock.Anything, mock.Anything)
}

func TestResolveShareLink_VisitFailureDoesNotFailRead(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("owner-1")
	link := linkFixture(w.ID)
	owner := &domain.User{ID: "owner-1", DisplayName: "Alice"}
	expectResolveFromStore(ctx, deps, w, link, owner)
	deps.links.On("RecordVisit", ctx, mock.AnythingOfType("*domain.SharedLinkVisit")).
		Return(errors.New("connection reset"))

	resolved, err := svc.ResolveShareLink(ctx, "guest-1", link.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, w.ID, resolved.Wishlist.ID)
}

func TestResolveShareLink_UnknownCode(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	deps.links.On("GetByCode", ctx, "nope").Return(nil, apperrors.ErrNotFound)

	_, err := svc.ResolveShareLink(ctx, "", "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- ListSharedWithMe ---

func TestListSharedWithMe_GroupsWithItems(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	w := ownedWishlistFixture("alice")
	deps.links.On("ListVisitedWishlists", ctx, "guest-1").
		Return([]domain.SharedWishlistGroup{
			{Owner: domain.User{ID: "alice", DisplayName: "Alice"}, Wishlists: []domain.Wishlist{*w}},
		}, nil).Once()
	deps.items.On("ListByWishlist", ctx, w.ID).
		Return([]domain.WishlistItem{{ID: uuid.New(), WishlistID: w.ID, Name: "headphones"}}, nil).Once()

	groups, err := svc.ListSharedWithMe(ctx, "guest-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Wishlists, 1)
	assert.Len(t, groups[0].Wishlists[0].Items, 1)

	// Second read served from cache.
	again, err := svc.ListSharedWithMe(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, groups, again)

	deps.links.AssertExpectations(t)
}

func TestListSharedWithMe_Anonymous(t *testing.T) {
	svc, _ := newTestSharedLinkService(t)

	_, err := svc.ListSharedWithMe(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestResolveShareLink_VisitInvalidatesSharedWithMe(t *testing.T) {
	svc, deps := newTestSharedLinkService(t)
	ctx := context.Background()

	// Seed the guest's shared-with-me cache.
	deps.links.On("ListVisitedWishlists", ctx, "guest-1").
		Return([]domain.SharedWishlistGroup{}, nil).Once()
	_, err := svc.ListSharedWithMe(ctx, "guest-1")
	require.NoError(t, err)

	w := ownedWishlistFixture("owner-1")
	link := linkFixture(w.ID)
	owner := &domain.User{ID: "owner-1", DisplayName: "Alice"}
	expectResolveFromStore(ctx, deps, w, link, owner)
	deps.links.On("RecordVisit", ctx, mock.AnythingOfType("*domain.SharedLinkVisit")).Return(nil)

	_, err = svc.ResolveShareLink(ctx, "guest-1", link.ShareCode)
	require.NoError(t, err)

	// The visit dropped the aggregate cache entry, so the next read
	// recomputes and includes the new wishlist.
	deps.links.On("ListVisitedWishlists", ctx, "guest-1").
		Return([]domain.SharedWishlistGroup{
			{Owner: *owner, Wishlists: []domain.Wishlist{*w}},
		}, nil).Once()
	deps.items.On("ListByWishlist", ctx, w.ID).
		Return([]domain.WishlistItem{}, nil).Once()

	groups, err := svc.ListSharedWithMe(ctx, "guest-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "owner-1", groups[0].Owner.ID)

	deps.links.AssertExpectations(t)
}
