package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/wishwell/internal/cache"
	"github.com/utafrali/wishwell/internal/domain"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

func newTestUserService(t *testing.T) (*UserService, *mockUserRepository, *cache.Cache) {
	t.Helper()
	repo := new(mockUserRepository)
	c, _ := newTestCache(t)
	svc := NewUserService(repo, c, testTTLs(), newTestProducer(), newTestLogger())
	return svc, repo, c
}

func TestRegister_Success(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()

	expected := &domain.User{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice"}
	repo.On("Upsert", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == "user-1" && u.Email == "alice@example.com"
	})).Return(expected, nil)

	user, err := svc.Register(ctx, "user-1", RegisterInput{Email: "alice@example.com", DisplayName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, expected, user)

	repo.AssertExpectations(t)
}

func TestRegister_Anonymous(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Register(context.Background(), "", RegisterInput{Email: "a@b.c"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestGetProfile_CacheAside(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()

	expected := &domain.User{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice"}
	repo.On("GetByID", ctx, "user-1").Return(expected, nil).Once()

	first, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.DisplayName)

	// Second read comes from cache; the mock allows one store hit only.
	second, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	repo.AssertExpectations(t)
}

func TestUpdateProfile_InvalidatesProfileCache(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()

	before := &domain.User{ID: "user-1", DisplayName: "Alice"}
	repo.On("GetByID", ctx, "user-1").Return(before, nil).Once()
	_, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)

	after := &domain.User{ID: "user-1", DisplayName: "Alicia"}
	repo.On("UpdateProfile", ctx, mock.AnythingOfType("*domain.User")).Return(after, nil)
	_, err = svc.UpdateProfile(ctx, "user-1", UpdateProfileInput{DisplayName: "Alicia"})
	require.NoError(t, err)

	// The stale profile entry is gone; the next read recomputes.
	repo.On("GetByID", ctx, "user-1").Return(after, nil).Once()
	got, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.DisplayName)

	repo.AssertExpectations(t)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-x").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetProfile(ctx, "user-x")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
