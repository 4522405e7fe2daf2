package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

func newFavoriteFixture(t *testing.T) (*FavoriteService, *stubRestaurantRepo) {
	t.Helper()
	restaurants := newStubRestaurantRepo()
	favorites := newStubFavoriteRepo(restaurants)
	return NewFavoriteService(favorites, restaurants, nil), restaurants
}

func TestFavoriteUniqueness(t *testing.T) {
	svc, restaurants := newFavoriteFixture(t)
	ctx := context.Background()

	restaurantID, err := restaurants.Create(ctx, domain.Restaurant{Name: "Noodle House"})
	if err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}

	principal := domain.Principal{UserID: 7, Username: "alice", Role: domain.RoleReviewer}

	if err := svc.Add(ctx, principal, restaurantID); err != nil {
		t.Fatalf("first favorite: %v", err)
	}
	if err := svc.Add(ctx, principal, restaurantID); !errors.Is(err, ErrAlreadyFavorited) {
		t.Fatalf("second favorite err = %v, want %v", err, ErrAlreadyFavorited)
	}

	favorited, err := svc.Status(ctx, principal, restaurantID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !favorited {
		t.Fatal("status should report favorited")
	}
}

func TestFavoriteUnknownRestaurant(t *testing.T) {
	svc, _ := newFavoriteFixture(t)
	principal := domain.Principal{UserID: 7, Role: domain.RoleReviewer}

	if err := svc.Add(context.Background(), principal, 999); !errors.Is(err, ErrRestaurantNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrRestaurantNotFound)
	}
}

func TestRemoveFavoriteWithoutPriorIsError(t *testing.T) {
	svc, restaurants := newFavoriteFixture(t)
	ctx := context.Background()

	restaurantID, err := restaurants.Create(ctx, domain.Restaurant{Name: "Noodle House"})
	if err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}

	principal := domain.Principal{UserID: 7, Role: domain.RoleReviewer}

	if err := svc.Remove(ctx, principal, restaurantID); !errors.Is(err, ErrNotFavorited) {
		t.Fatalf("err = %v, want %v", err, ErrNotFavorited)
	}

	if err := svc.Add(ctx, principal, restaurantID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, principal, restaurantID); err != nil {
		t.Fatalf("remove after add: %v", err)
	}
}
