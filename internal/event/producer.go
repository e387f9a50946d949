package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/wishwell/internal/domain"
	pkgkafka "github.com/utafrali/wishwell/pkg/kafka"
)

// Kafka topic constants for wishlist domain events.
const (
	TopicItemReserved   = "wishwell.item.reserved"
	TopicItemReleased   = "wishwell.item.released"
	TopicLinkCreated    = "wishwell.link.created"
	TopicLinkVisited    = "wishwell.link.visited"
	TopicUserRegistered = "wishwell.user.registered"
)

// Aggregate type constants.
const (
	AggregateTypeItem = "wishlist_item"
	AggregateTypeLink = "shared_link"
	AggregateTypeUser = "user"
)

// Source identifier for events originating from this service.
const SourceWishwell = "wishwell"

// ItemReservationData is the payload for item.reserved and item.released events.
type ItemReservationData struct {
	ItemID     string `json:"item_id"`
	WishlistID string `json:"wishlist_id"`
	UserID     string `json:"user_id"`
}

// LinkCreatedData is the payload for a link.created event.
type LinkCreatedData struct {
	LinkID     string `json:"link_id"`
	WishlistID string `json:"wishlist_id"`
	CreatedBy  string `json:"created_by"`
}

// LinkVisitedData is the payload for a link.visited event.
type LinkVisitedData struct {
	LinkID     string `json:"link_id"`
	WishlistID string `json:"wishlist_id"`
	VisitorID  string `json:"visitor_id"`
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReservationChanged publishes item.reserved or item.released depending
// on the toggle outcome.
func (p *Producer) PublishReservationChanged(ctx context.Context, result *domain.ReservationResult, userID string) error {
	topic := TopicItemReleased
	if result.Reserved {
		topic = TopicItemReserved
	}

	data := ItemReservationData{
		ItemID:     result.Item.ID.String(),
		WishlistID: result.Item.WishlistID.String(),
		UserID:     userID,
	}

	event, err := pkgkafka.NewEvent(topic, data.ItemID, AggregateTypeItem, SourceWishwell, data)
	if err != nil {
		return fmt.Errorf("create reservation event: %w", err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish reservation event: %w", err)
	}

	p.logger.DebugContext(ctx, "published reservation event",
		slog.String("topic", topic),
		slog.String("item_id", data.ItemID),
	)

	return nil
}

// PublishLinkCreated publishes a link.created event.
func (p *Producer) PublishLinkCreated(ctx context.Context, link *domain.SharedLink) error {
	data := LinkCreatedData{
		LinkID:     link.ID.String(),
		WishlistID: link.WishlistID.String(),
		CreatedBy:  link.CreatedBy,
	}

	event, err := pkgkafka.NewEvent(TopicLinkCreated, data.LinkID, AggregateTypeLink, SourceWishwell, data)
	if err != nil {
		return fmt.Errorf("create link.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicLinkCreated, event); err != nil {
		return fmt.Errorf("publish link.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published link.created event",
		slog.String("link_id", data.LinkID),
	)

	return nil
}

// PublishLinkVisited publishes a link.visited event.
func (p *Producer) PublishLinkVisited(ctx context.Context, link *domain.SharedLink, visitorID string) error {
	data := LinkVisitedData{
		LinkID:     link.ID.String(),
		WishlistID: link.WishlistID.String(),
		VisitorID:  visitorID,
	}

	event, err := pkgkafka.NewEvent(TopicLinkVisited, data.LinkID, AggregateTypeLink, SourceWishwell, data)
	if err != nil {
		return fmt.Errorf("create link.visited event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicLinkVisited, event); err != nil {
		return fmt.Errorf("publish link.visited event: %w", err)
	}

	return nil
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		UserID: user.ID,
		Email:  user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceWishwell, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	return nil
}
