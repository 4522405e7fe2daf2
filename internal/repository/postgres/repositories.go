package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users       *UserRepository
	Restaurants *RestaurantRepository
	Reviews     *ReviewRepository
	Likes       *LikeRepository
	Favorites   *FavoriteRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(pool),
		Restaurants: NewRestaurantRepository(pool),
		Reviews:     NewReviewRepository(pool),
		Likes:       NewLikeRepository(pool),
		Favorites:   NewFavoriteRepository(pool),
	}
}
