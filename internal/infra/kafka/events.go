package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(_ context.Context, eventType string, userID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var userIDValue string
	if userID != 0 {
		userIDValue = strconv.FormatInt(userID, 10)
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		UserID:    userIDValue,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	p.producer.Send(p.producer.TopicName(eventType), userIDValue, bytes)
	return nil
}

// PublishUserRegistered publishes user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       int64     `json:"user_id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt,
	}
	return p.publish(ctx, "user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishRestaurantCreated publishes restaurant.created events.
func (p *EventPublisher) PublishRestaurantCreated(ctx context.Context, event domain.RestaurantCreatedEvent) error {
	payload := struct {
		RestaurantID int64     `json:"restaurant_id"`
		Name         string    `json:"name"`
		Category     string    `json:"category"`
		CreatedBy    string    `json:"created_by"`
		CreatedAt    time.Time `json:"created_at"`
	}{
		RestaurantID: event.RestaurantID,
		Name:         event.Name,
		Category:     event.Category,
		CreatedBy:    event.CreatedBy,
		CreatedAt:    event.CreatedAt,
	}
	return p.publish(ctx, "restaurant.created", 0, event.CreatedAt, payload)
}

// PublishReviewCreated publishes review.created events.
func (p *EventPublisher) PublishReviewCreated(ctx context.Context, event domain.ReviewCreatedEvent) error {
	payload := struct {
		ReviewID     int64     `json:"review_id"`
		RestaurantID int64     `json:"restaurant_id"`
		UserID       int64     `json:"user_id"`
		Rating       int       `json:"rating"`
		CreatedAt    time.Time `json:"created_at"`
	}{
		ReviewID:     event.ReviewID,
		RestaurantID: event.RestaurantID,
		UserID:       event.UserID,
		Rating:       event.Rating,
		CreatedAt:    event.CreatedAt,
	}
	return p.publish(ctx, "review.created", event.UserID, event.CreatedAt, payload)
}

// PublishReviewLiked publishes review.liked events.
func (p *EventPublisher) PublishReviewLiked(ctx context.Context, event domain.ReviewLikedEvent) error {
	payload := struct {
		ReviewID int64     `json:"review_id"`
		UserID   int64     `json:"user_id"`
		LikedAt  time.Time `json:"liked_at"`
	}{
		ReviewID: event.ReviewID,
		UserID:   event.UserID,
		LikedAt:  event.LikedAt,
	}
	return p.publish(ctx, "review.liked", event.UserID, event.LikedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
