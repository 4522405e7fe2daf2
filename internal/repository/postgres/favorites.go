package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

// FavoriteRepository implements port.FavoriteRepository using
// PostgreSQL. The favorites table carries a unique
// (user_id, restaurant_id) constraint so concurrent double favorites
// collapse into repository.ErrDuplicate.
type FavoriteRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewFavoriteRepository wires a favorite repository backed by any
// executor that satisfies pgExecutor.
func NewFavoriteRepository(exec pgExecutor) *FavoriteRepository {
	repo := &FavoriteRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *FavoriteRepository) WithTx(tx pgx.Tx) *FavoriteRepository {
	if tx == nil {
		return r
	}
	return &FavoriteRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Add records a favorite. Fails with repository.ErrDuplicate if the
// restaurant is already among the user's favorites.
func (r *FavoriteRepository) Add(ctx context.Context, userID, restaurantID int64) error {
	stmt, args, err := r.builder.Insert("favorites").
		Columns("user_id", "restaurant_id", "created_at").
		Values(userID, restaurantID, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert favorite sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert favorite: %w", err)
	}

	return nil
}

// Remove deletes a favorite. Fails with repository.ErrNotFound if the
// restaurant was not among the user's favorites.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, restaurantID int64) error {
	stmt, args, err := r.builder.Delete("favorites").
		Where(squirrel.Eq{"user_id": userID, "restaurant_id": restaurantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete favorite sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Exists reports whether the restaurant is among the user's favorites.
func (r *FavoriteRepository) Exists(ctx context.Context, userID, restaurantID int64) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("favorites").
		Where(squirrel.Eq{"user_id": userID, "restaurant_id": restaurantID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select favorite sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("select favorite: %w", err)
	}

	return true, nil
}

// ListRestaurants returns the user's favorite restaurants, most
// recently favorited first.
func (r *FavoriteRepository) ListRestaurants(ctx context.Context, userID int64) ([]domain.Restaurant, error) {
	columns := make([]string, len(restaurantColumns))
	for i, col := range restaurantColumns {
		columns[i] = "r." + col
	}

	stmt, args, err := r.builder.
		Select(columns...).
		From("favorites f").
		Join("restaurants r ON r.id = f.restaurant_id").
		Where(squirrel.Eq{"f.user_id": userID}).
		OrderBy("f.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list favorite restaurants sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query favorite restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite restaurants: %w", err)
	}

	return restaurants, nil
}

// RemoveByRestaurant deletes every favorite pointing at a restaurant.
func (r *FavoriteRepository) RemoveByRestaurant(ctx context.Context, restaurantID int64) error {
	stmt, args, err := r.builder.Delete("favorites").
		Where(squirrel.Eq{"restaurant_id": restaurantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete favorites by restaurant sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete favorites by restaurant: %w", err)
	}

	return nil
}

var _ port.FavoriteRepository = (*FavoriteRepository)(nil)
