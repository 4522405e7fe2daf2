package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plateful/restaurant-review-api/internal/core/port"
)

// RatingCacheConfig defines key naming and retention for cached ratings.
type RatingCacheConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// RatingCacheRepository stores computed average ratings in Redis. A
// missing key is not an error; readers recompute from the review set.
type RatingCacheRepository struct {
	client *redis.Client
	cfg    RatingCacheConfig
}

// NewRatingCacheRepository constructs a repository using the provided Redis client and config.
func NewRatingCacheRepository(client *redis.Client, cfg RatingCacheConfig) *RatingCacheRepository {
	return &RatingCacheRepository{client: client, cfg: cfg}
}

// SetAverageRating stores the rating under the restaurant key with TTL.
func (r *RatingCacheRepository) SetAverageRating(ctx context.Context, restaurantID int64, rating float64) error {
	value := strconv.FormatFloat(rating, 'f', -1, 64)
	if err := r.client.Set(ctx, r.key(restaurantID), value, r.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("redis set rating: %w", err)
	}
	return nil
}

// GetAverageRating returns the cached rating and whether it was present.
func (r *RatingCacheRepository) GetAverageRating(ctx context.Context, restaurantID int64) (float64, bool, error) {
	value, err := r.client.Get(ctx, r.key(restaurantID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get rating: %w", err)
	}

	rating, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached rating: %w", err)
	}

	return rating, true, nil
}

// Invalidate drops the cached rating for a restaurant.
func (r *RatingCacheRepository) Invalidate(ctx context.Context, restaurantID int64) error {
	if err := r.client.Del(ctx, r.key(restaurantID)).Err(); err != nil {
		return fmt.Errorf("redis del rating: %w", err)
	}
	return nil
}

func (r *RatingCacheRepository) key(restaurantID int64) string {
	prefix := r.cfg.KeyPrefix
	if prefix == "" {
		prefix = "rating"
	}
	return fmt.Sprintf("%s:%d", prefix, restaurantID)
}

var _ port.RatingCache = (*RatingCacheRepository)(nil)
