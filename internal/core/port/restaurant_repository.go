package port

import (
	"context"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

// RestaurantRepository exposes persistence behavior for restaurants.
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant domain.Restaurant) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Restaurant, error)
	// List returns a page of restaurants matching the filter together
	// with the total number of matches before pagination.
	List(ctx context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, int, error)
	ListByCreator(ctx context.Context, username string) ([]domain.Restaurant, error)
	// ListPopular returns restaurants ordered by review count, most
	// reviewed first.
	ListPopular(ctx context.Context, limit int) ([]domain.Restaurant, error)
	ListLatest(ctx context.Context, limit int) ([]domain.Restaurant, error)
	Update(ctx context.Context, restaurant domain.Restaurant) error
	UpdateAverageRating(ctx context.Context, id int64, rating float64) error
	Delete(ctx context.Context, id int64) error
}

// FavoriteRepository persists user-restaurant bookmarks. Add must fail
// with repository.ErrDuplicate when the pair already exists.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, restaurantID int64) error
	Remove(ctx context.Context, userID, restaurantID int64) error
	Exists(ctx context.Context, userID, restaurantID int64) (bool, error)
	ListRestaurants(ctx context.Context, userID int64) ([]domain.Restaurant, error)
	RemoveByRestaurant(ctx context.Context, restaurantID int64) error
}
