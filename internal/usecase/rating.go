package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/infra/logger"
)

// RatingService keeps the derived average rating of a restaurant in
// sync with its review set. The live review set is the source of
// truth; the restaurant column and the Redis entry are both caches.
type RatingService struct {
	reviews     port.ReviewRepository
	restaurants port.RestaurantRepository
	cache       port.RatingCache
	logger      *zap.Logger
}

// NewRatingService constructs RatingService. cache may be nil, in
// which case only the restaurant column is maintained.
func NewRatingService(reviews port.ReviewRepository, restaurants port.RestaurantRepository, cache port.RatingCache, log *zap.Logger) *RatingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RatingService{reviews: reviews, restaurants: restaurants, cache: cache, logger: log}
}

// Recompute recalculates the average from the live review set and
// refreshes both caches. Runs in the same request as the review
// mutation so the invoking request reads its own write.
func (s *RatingService) Recompute(ctx context.Context, restaurantID int64) (float64, error) {
	reviews, err := s.reviews.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return 0, fmt.Errorf("list reviews: %w", err)
	}

	rating := AverageRating(reviews)

	if err := s.restaurants.UpdateAverageRating(ctx, restaurantID, rating); err != nil {
		return 0, fmt.Errorf("persist average rating: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetAverageRating(ctx, restaurantID, rating); err != nil {
			logger.WithContext(ctx).Warn("cache average rating failed",
				zap.Int64("restaurant_id", restaurantID), zap.Error(err))
		}
	}

	return rating, nil
}

// Average returns the current average rating, serving from cache when
// possible and recomputing from the review set otherwise.
func (s *RatingService) Average(ctx context.Context, restaurantID int64) (float64, error) {
	if s.cache != nil {
		rating, ok, err := s.cache.GetAverageRating(ctx, restaurantID)
		if err != nil {
			logger.WithContext(ctx).Warn("read cached rating failed",
				zap.Int64("restaurant_id", restaurantID), zap.Error(err))
		} else if ok {
			return rating, nil
		}
	}

	reviews, err := s.reviews.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return 0, fmt.Errorf("list reviews: %w", err)
	}
	rating := AverageRating(reviews)

	if s.cache != nil {
		if err := s.cache.SetAverageRating(ctx, restaurantID, rating); err != nil {
			logger.WithContext(ctx).Warn("cache average rating failed",
				zap.Int64("restaurant_id", restaurantID), zap.Error(err))
		}
	}

	return rating, nil
}

// Invalidate drops the cached rating, typically when a restaurant is
// removed.
func (s *RatingService) Invalidate(ctx context.Context, restaurantID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, restaurantID); err != nil {
		logger.WithContext(ctx).Warn("invalidate cached rating failed",
			zap.Int64("restaurant_id", restaurantID), zap.Error(err))
	}
}
