package port

import (
	"context"
	"time"
)

// RatingCache stores the most recently computed average rating per
// restaurant. It is an optimization only; readers fall back to the live
// review set when a key is missing.
type RatingCache interface {
	SetAverageRating(ctx context.Context, restaurantID int64, rating float64) error
	GetAverageRating(ctx context.Context, restaurantID int64) (float64, bool, error)
	Invalidate(ctx context.Context, restaurantID int64) error
}

// RateLimitStore defines the sliding-window persistence used by the
// login and registration rate limiter.
type RateLimitStore interface {
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}
