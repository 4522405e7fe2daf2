package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

var restaurantColumns = []string{
	"id",
	"name",
	"address",
	"phone",
	"category",
	"description",
	"created_by",
	"image_url",
	"average_rating",
	"created_at",
}

// sortableRestaurantColumns whitelists columns accepted in list sort
// expressions. Anything else falls back to newest first.
var sortableRestaurantColumns = map[string]struct{}{
	"name":           {},
	"category":       {},
	"created_at":     {},
	"average_rating": {},
}

// RestaurantRepository implements port.RestaurantRepository using PostgreSQL.
type RestaurantRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRestaurantRepository wires a restaurant repository backed by any
// executor that satisfies pgExecutor.
func NewRestaurantRepository(exec pgExecutor) *RestaurantRepository {
	repo := &RestaurantRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *RestaurantRepository) WithTx(tx pgx.Tx) *RestaurantRepository {
	if tx == nil {
		return r
	}
	return &RestaurantRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new restaurant row and returns the generated identifier.
func (r *RestaurantRepository) Create(ctx context.Context, restaurant domain.Restaurant) (int64, error) {
	var imageValue any
	if restaurant.ImageURL != nil && *restaurant.ImageURL != "" {
		imageValue = *restaurant.ImageURL
	}

	stmt, args, err := r.builder.Insert("restaurants").
		Columns("name", "address", "phone", "category", "description", "created_by", "image_url", "average_rating", "created_at").
		Values(
			restaurant.Name,
			restaurant.Address,
			restaurant.Phone,
			restaurant.Category,
			restaurant.Description,
			restaurant.CreatedByUsername,
			imageValue,
			restaurant.AverageRating,
			restaurant.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert restaurant sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert restaurant: %w", err)
	}

	return id, nil
}

// GetByID retrieves a restaurant by identifier.
func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	stmt, args, err := r.builder.
		Select(restaurantColumns...).
		From("restaurants").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select restaurant sql: %w", err)
	}

	restaurant, err := scanRestaurant(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

// List returns a page of restaurants matching the filter and the total
// number of matches before pagination.
func (r *RestaurantRepository) List(ctx context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, int, error) {
	conditions := squirrel.And{}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		conditions = append(conditions, squirrel.ILike{"name": "%" + keyword + "%"})
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		conditions = append(conditions, squirrel.Eq{"category": category})
	}

	countQuery := r.builder.Select("COUNT(*)").From("restaurants")
	if len(conditions) > 0 {
		countQuery = countQuery.Where(conditions)
	}
	stmt, args, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count restaurants sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count restaurants: %w", err)
	}

	page := filter.Page
	if page < 0 {
		page = 0
	}
	size := filter.Size
	if size <= 0 {
		size = 10
	}

	query := r.builder.
		Select(restaurantColumns...).
		From("restaurants").
		OrderBy(restaurantOrderBy(filter.Sort)).
		Limit(uint64(size)).
		Offset(uint64(page * size))
	if len(conditions) > 0 {
		query = query.Where(conditions)
	}

	stmt, args, err = query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list restaurants sql: %w", err)
	}

	restaurants, err := r.queryRestaurants(ctx, stmt, args...)
	if err != nil {
		return nil, 0, err
	}

	return restaurants, total, nil
}

// restaurantOrderBy maps a "column" or "column,desc" sort expression
// onto a whitelisted ORDER BY clause.
func restaurantOrderBy(sort string) string {
	column := "created_at"
	direction := "DESC"

	if sort != "" {
		parts := strings.SplitN(sort, ",", 2)
		candidate := strings.TrimSpace(strings.ToLower(parts[0]))
		if _, ok := sortableRestaurantColumns[candidate]; ok {
			column = candidate
			direction = "ASC"
			if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
				direction = "DESC"
			}
		}
	}

	return column + " " + direction
}

// ListByCreator returns restaurants registered by the given username,
// newest first.
func (r *RestaurantRepository) ListByCreator(ctx context.Context, username string) ([]domain.Restaurant, error) {
	stmt, args, err := r.builder.
		Select(restaurantColumns...).
		From("restaurants").
		Where(squirrel.Eq{"created_by": username}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list restaurants by creator sql: %w", err)
	}

	return r.queryRestaurants(ctx, stmt, args...)
}

// ListPopular returns restaurants ordered by review count, most
// reviewed first.
func (r *RestaurantRepository) ListPopular(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	if limit <= 0 {
		limit = 10
	}

	columns := make([]string, len(restaurantColumns))
	for i, col := range restaurantColumns {
		columns[i] = "r." + col
	}

	stmt, args, err := r.builder.
		Select(columns...).
		From("restaurants r").
		LeftJoin("reviews rv ON rv.restaurant_id = r.id").
		GroupBy(columns...).
		OrderBy("COUNT(rv.id) DESC", "r.created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list popular restaurants sql: %w", err)
	}

	return r.queryRestaurants(ctx, stmt, args...)
}

// ListLatest returns the most recently registered restaurants.
func (r *RestaurantRepository) ListLatest(ctx context.Context, limit int) ([]domain.Restaurant, error) {
	if limit <= 0 {
		limit = 10
	}

	stmt, args, err := r.builder.
		Select(restaurantColumns...).
		From("restaurants").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list latest restaurants sql: %w", err)
	}

	return r.queryRestaurants(ctx, stmt, args...)
}

// Update persists mutable fields of an existing restaurant.
func (r *RestaurantRepository) Update(ctx context.Context, restaurant domain.Restaurant) error {
	var imageValue any
	if restaurant.ImageURL != nil && *restaurant.ImageURL != "" {
		imageValue = *restaurant.ImageURL
	}

	stmt, args, err := r.builder.Update("restaurants").
		Set("name", restaurant.Name).
		Set("address", restaurant.Address).
		Set("phone", restaurant.Phone).
		Set("category", restaurant.Category).
		Set("description", restaurant.Description).
		Set("image_url", imageValue).
		Where(squirrel.Eq{"id": restaurant.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update restaurant sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update restaurant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateAverageRating refreshes the cached average rating column.
func (r *RestaurantRepository) UpdateAverageRating(ctx context.Context, id int64, rating float64) error {
	stmt, args, err := r.builder.Update("restaurants").
		Set("average_rating", rating).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update average rating sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update average rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a restaurant row.
func (r *RestaurantRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("restaurants").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete restaurant sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *RestaurantRepository) queryRestaurants(ctx context.Context, stmt string, args ...any) ([]domain.Restaurant, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
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
		return nil, fmt.Errorf("iterate restaurants: %w", err)
	}

	return restaurants, nil
}

func scanRestaurant(row pgx.Row) (*domain.Restaurant, error) {
	var (
		restaurant domain.Restaurant
		image      sql.NullString
	)

	if err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Address,
		&restaurant.Phone,
		&restaurant.Category,
		&restaurant.Description,
		&restaurant.CreatedByUsername,
		&image,
		&restaurant.AverageRating,
		&restaurant.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan restaurant: %w", err)
	}

	if image.Valid {
		val := image.String
		restaurant.ImageURL = &val
	}

	return &restaurant, nil
}

var _ port.RestaurantRepository = (*RestaurantRepository)(nil)
