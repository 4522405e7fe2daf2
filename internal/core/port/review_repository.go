package port

import (
	"context"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

// ReviewRepository exposes persistence behavior for reviews. All reads
// return reviews with author, restaurant name and like projections
// loaded; callers never traverse associations lazily.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Review, error)
	Update(ctx context.Context, review domain.Review) error
	Delete(ctx context.Context, id int64) error
	DeleteByRestaurant(ctx context.Context, restaurantID int64) error
}

// LikeRepository persists review likes. Add must fail with
// repository.ErrDuplicate when the (user, review) pair already exists.
type LikeRepository interface {
	Add(ctx context.Context, userID, reviewID int64) error
	Remove(ctx context.Context, userID, reviewID int64) error
	Exists(ctx context.Context, userID, reviewID int64) (bool, error)
	CountByReview(ctx context.Context, reviewID int64) (int64, error)
	RemoveByReview(ctx context.Context, reviewID int64) error
}
