package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/wishwell/internal/cache"
	"github.com/utafrali/wishwell/internal/domain"
	"github.com/utafrali/wishwell/internal/event"
	pkgkafka "github.com/utafrali/wishwell/pkg/kafka"
)

// --- Mock Repositories ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockWishlistRepository struct {
	mock.Mock
}

func (m *mockWishlistRepository) Create(ctx context.Context, wishlist *domain.Wishlist) error {
	args := m.Called(ctx, wishlist)
	return args.Error(0)
}

func (m *mockWishlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Wishlist, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) Update(ctx context.Context, wishlist *domain.Wishlist) error {
	args := m.Called(ctx, wishlist)
	return args.Error(0)
}

func (m *mockWishlistRepository) UpdateRanks(ctx context.Context, ownerID string, orderedIDs []uuid.UUID) error {
	args := m.Called(ctx, ownerID, orderedIDs)
	return args.Error(0)
}

func (m *mockWishlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) Create(ctx context.Context, item *domain.WishlistItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WishlistItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WishlistItem), args.Error(1)
}

func (m *mockItemRepository) ListByWishlist(ctx context.Context, wishlistID uuid.UUID) ([]domain.WishlistItem, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistItem), args.Error(1)
}

func (m *mockItemRepository) Update(ctx context.Context, item *domain.WishlistItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockItemRepository) ToggleReservation(ctx context.Context, itemID uuid.UUID, userID string) (*domain.ReservationResult, error) {
	args := m.Called(ctx, itemID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationResult), args.Error(1)
}

type mockSharedLinkRepository struct {
	mock.Mock
}

func (m *mockSharedLinkRepository) Create(ctx context.Context, link *domain.SharedLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *mockSharedLinkRepository) GetByWishlist(ctx context.Context, wishlistID uuid.UUID) (*domain.SharedLink, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedLink), args.Error(1)
}

func (m *mockSharedLinkRepository) GetByCode(ctx context.Context, code string) (*domain.SharedLink, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedLink), args.Error(1)
}

func (m *mockSharedLinkRepository) RecordVisit(ctx context.Context, visit *domain.SharedLinkVisit) error {
	args := m.Called(ctx, visit)
	return args.Error(0)
}

func (m *mockSharedLinkRepository) ListVisitedWishlists(ctx context.Context, userID string) ([]domain.SharedWishlistGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SharedWishlistGroup), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestCache backs the cache with a real miniredis so cache-coherence
// scenarios exercise the actual read-through and invalidation paths.
func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, newTestLogger(), 150*time.Millisecond), mr
}

// newTestProducer creates an event producer with no broker behind it.
// Publish failures are logged by the services, never surfaced.
func newTestProducer() *event.Producer {
	logger := newTestLogger()
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	return event.NewProducer(kafkaProducer, logger)
}

func testTTLs() cache.TTLConfig {
	return cache.TTLConfig{
		WishlistItems: 10 * time.Minute,
		SharedLink:    10 * time.Minute,
		SharedWithMe:  5 * time.Minute,
		UserProfile:   10 * time.Minute,
		Wishlists:     5 * time.Minute,
	}
}
