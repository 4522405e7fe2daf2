package port

import (
	"context"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

// EventPublisher publishes activity events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishRestaurantCreated(ctx context.Context, event domain.RestaurantCreatedEvent) error
	PublishReviewCreated(ctx context.Context, event domain.ReviewCreatedEvent) error
	PublishReviewLiked(ctx context.Context, event domain.ReviewLikedEvent) error
}
