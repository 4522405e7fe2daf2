package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

// FavoriteService handles restaurant bookmarking.
type FavoriteService struct {
	favorites   port.FavoriteRepository
	restaurants port.RestaurantRepository
	logger      *zap.Logger
}

// NewFavoriteService constructs FavoriteService.
func NewFavoriteService(favorites port.FavoriteRepository, restaurants port.RestaurantRepository, log *zap.Logger) *FavoriteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FavoriteService{favorites: favorites, restaurants: restaurants, logger: log}
}

// Add bookmarks a restaurant for the principal. Favoriting twice is a
// validation error; the storage-level uniqueness constraint closes the
// check-then-act race.
func (s *FavoriteService) Add(ctx context.Context, principal domain.Principal, restaurantID int64) error {
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRestaurantNotFound
		}
		return fmt.Errorf("lookup restaurant: %w", err)
	}

	favorited, err := s.favorites.Exists(ctx, principal.UserID, restaurantID)
	if err != nil {
		return fmt.Errorf("check favorite: %w", err)
	}
	if favorited {
		return ErrAlreadyFavorited
	}

	if err := s.favorites.Add(ctx, principal.UserID, restaurantID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyFavorited
		}
		return fmt.Errorf("add favorite: %w", err)
	}

	return nil
}

// Remove drops a bookmark. Removing a bookmark that does not exist is
// an error, not a no-op.
func (s *FavoriteService) Remove(ctx context.Context, principal domain.Principal, restaurantID int64) error {
	if err := s.favorites.Remove(ctx, principal.UserID, restaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFavorited
		}
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// Status reports whether the restaurant is among the principal's
// favorites.
func (s *FavoriteService) Status(ctx context.Context, principal domain.Principal, restaurantID int64) (bool, error) {
	favorited, err := s.favorites.Exists(ctx, principal.UserID, restaurantID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return favorited, nil
}
