package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"email":         event.Email,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent("user.registered", event.RegisteredAt, payload)
	return nil
}

// PublishRestaurantCreated logs restaurant.created events.
func (p *StubPublisher) PublishRestaurantCreated(_ context.Context, event domain.RestaurantCreatedEvent) error {
	payload := map[string]any{
		"restaurant_id": event.RestaurantID,
		"name":          event.Name,
		"category":      event.Category,
		"created_by":    event.CreatedBy,
		"created_at":    event.CreatedAt,
	}
	p.logEvent("restaurant.created", event.CreatedAt, payload)
	return nil
}

// PublishReviewCreated logs review.created events.
func (p *StubPublisher) PublishReviewCreated(_ context.Context, event domain.ReviewCreatedEvent) error {
	payload := map[string]any{
		"review_id":     event.ReviewID,
		"restaurant_id": event.RestaurantID,
		"user_id":       event.UserID,
		"rating":        event.Rating,
		"created_at":    event.CreatedAt,
	}
	p.logEvent("review.created", event.CreatedAt, payload)
	return nil
}

// PublishReviewLiked logs review.liked events.
func (p *StubPublisher) PublishReviewLiked(_ context.Context, event domain.ReviewLikedEvent) error {
	payload := map[string]any{
		"review_id": event.ReviewID,
		"user_id":   event.UserID,
		"liked_at":  event.LikedAt,
	}
	p.logEvent("review.liked", event.LikedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
