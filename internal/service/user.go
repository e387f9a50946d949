package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/wishwell/internal/cache"
	"github.com/utafrali/wishwell/internal/domain"
	"github.com/utafrali/wishwell/internal/event"
	"github.com/utafrali/wishwell/internal/repository"
	apperrors "github.com/utafrali/wishwell/pkg/errors"
)

// RegisterInput holds the parameters for registering a user profile.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=120"`
}

// UpdateProfileInput holds the parameters for updating a user profile.
type UpdateProfileInput struct {
	DisplayName string  `json:"display_name" validate:"required,max=120"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty,url"`
}

// UserService implements the business logic for user profiles.
type UserService struct {
	repo     repository.UserRepository
	cache    *cache.Cache
	ttls     cache.TTLConfig
	producer *event.Producer
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, c *cache.Cache, ttls cache.TTLConfig, producer *event.Producer, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		cache:    c,
		ttls:     ttls,
		producer: producer,
		logger:   logger,
	}
}

// Register creates the user row for a verified identity, or refreshes it if
// the identity is already known. Called on first authenticated contact.
func (s *UserService) Register(ctx context.Context, userID string, input RegisterInput) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	user, err := s.repo.Upsert(ctx, &domain.User{
		ID:          userID,
		Email:       input.Email,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		return nil, storeError("register user", err)
	}

	s.cache.Remove(ctx, cache.UserProfileKey(userID))

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", userID))

	return user, nil
}

// GetProfile retrieves a user profile, cache first.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	key := cache.UserProfileKey(userID)

	var cached domain.User
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError("get user profile", err)
	}

	s.cache.Set(ctx, key, user, s.ttls.UserProfile)

	return user, nil
}

// UpdateProfile updates the mutable profile fields of a user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("caller identity is required")
	}

	user, err := s.repo.UpdateProfile(ctx, &domain.User{
		ID:          userID,
		DisplayName: input.DisplayName,
		PhotoURL:    input.PhotoURL,
	})
	if err != nil {
		return nil, storeError("update user profile", err)
	}

	s.cache.Remove(ctx, cache.UserProfileKey(userID))

	s.logger.InfoContext(ctx, "user profile updated", slog.String("user_id", userID))

	return user, nil
}
