package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

// reviewColumns joins the author and restaurant so every loaded review
// carries its projections; nothing is resolved lazily later.
var reviewColumns = []string{
	"rv.id",
	"rv.restaurant_id",
	"rv.user_id",
	"rv.content",
	"rv.rating",
	"rv.image_url",
	"rv.created_at",
	"rv.updated_at",
	"u.username",
	"u.role",
	"r.name",
}

// ReviewRepository implements port.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewReviewRepository wires a review repository backed by any executor
// that satisfies pgExecutor.
func NewReviewRepository(exec pgExecutor) *ReviewRepository {
	repo := &ReviewRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ReviewRepository) WithTx(tx pgx.Tx) *ReviewRepository {
	if tx == nil {
		return r
	}
	return &ReviewRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new review row and returns the generated identifier.
func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) (int64, error) {
	var imageValue any
	if review.ImageURL != nil && *review.ImageURL != "" {
		imageValue = *review.ImageURL
	}

	stmt, args, err := r.builder.Insert("reviews").
		Columns("restaurant_id", "user_id", "content", "rating", "image_url", "created_at").
		Values(review.RestaurantID, review.UserID, review.Content, review.Rating, imageValue, review.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert review sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}

	return id, nil
}

// GetByID retrieves a review with its projections loaded.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	stmt, args, err := r.reviewQuery().
		Where(squirrel.Eq{"rv.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select review sql: %w", err)
	}

	review, err := scanReview(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	reviews := []domain.Review{*review}
	if err := r.loadLikes(ctx, reviews); err != nil {
		return nil, err
	}

	return &reviews[0], nil
}

// ListByRestaurant returns every review for a restaurant, newest first,
// with projections loaded.
func (r *ReviewRepository) ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Review, error) {
	stmt, args, err := r.reviewQuery().
		Where(squirrel.Eq{"rv.restaurant_id": restaurantID}).
		OrderBy("rv.created_at DESC", "rv.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews sql: %w", err)
	}

	return r.queryReviews(ctx, stmt, args...)
}

// ListByUser returns every review written by a user, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	stmt, args, err := r.reviewQuery().
		Where(squirrel.Eq{"rv.user_id": userID}).
		OrderBy("rv.created_at DESC", "rv.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews by user sql: %w", err)
	}

	return r.queryReviews(ctx, stmt, args...)
}

// Update persists content, rating and image changes and stamps updated_at.
func (r *ReviewRepository) Update(ctx context.Context, review domain.Review) error {
	var imageValue any
	if review.ImageURL != nil && *review.ImageURL != "" {
		imageValue = *review.ImageURL
	}

	updatedAt := time.Now().UTC()
	if review.UpdatedAt != nil {
		updatedAt = *review.UpdatedAt
	}

	stmt, args, err := r.builder.Update("reviews").
		Set("content", review.Content).
		Set("rating", review.Rating).
		Set("image_url", imageValue).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": review.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update review sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a review row.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("reviews").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete review sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteByRestaurant removes all reviews belonging to a restaurant.
func (r *ReviewRepository) DeleteByRestaurant(ctx context.Context, restaurantID int64) error {
	stmt, args, err := r.builder.Delete("reviews").
		Where(squirrel.Eq{"restaurant_id": restaurantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete reviews by restaurant sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete reviews by restaurant: %w", err)
	}

	return nil
}

func (r *ReviewRepository) reviewQuery() squirrel.SelectBuilder {
	return r.builder.
		Select(reviewColumns...).
		From("reviews rv").
		Join("users u ON u.id = rv.user_id").
		Join("restaurants r ON r.id = rv.restaurant_id")
}

func (r *ReviewRepository) queryReviews(ctx context.Context, stmt string, args ...any) ([]domain.Review, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	if err := r.loadLikes(ctx, reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

// loadLikes attaches the like rows of every review in a single query.
func (r *ReviewRepository) loadLikes(ctx context.Context, reviews []domain.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	index := make(map[int64]int, len(reviews))
	ids := make([]int64, len(reviews))
	for i := range reviews {
		reviews[i].Likes = nil
		ids[i] = reviews[i].ID
		index[reviews[i].ID] = i
	}

	stmt, args, err := r.builder.
		Select("user_id", "review_id", "created_at").
		From("review_likes").
		Where(squirrel.Eq{"review_id": ids}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select review likes sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("query review likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var like domain.ReviewLike
		if err := rows.Scan(&like.UserID, &like.ReviewID, &like.CreatedAt); err != nil {
			return fmt.Errorf("scan review like: %w", err)
		}
		if i, ok := index[like.ReviewID]; ok {
			reviews[i].Likes = append(reviews[i].Likes, like)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate review likes: %w", err)
	}

	return nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		review    domain.Review
		image     sql.NullString
		updatedAt *time.Time
		roleName  string
	)

	if err := row.Scan(
		&review.ID,
		&review.RestaurantID,
		&review.UserID,
		&review.Content,
		&review.Rating,
		&image,
		&review.CreatedAt,
		&updatedAt,
		&review.AuthorUsername,
		&roleName,
		&review.RestaurantName,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	role, err := domain.ParseRole(roleName)
	if err != nil {
		return nil, fmt.Errorf("scan review: %w", err)
	}
	review.AuthorRole = role

	if image.Valid {
		val := image.String
		review.ImageURL = &val
	}
	review.UpdatedAt = updatedAt

	return &review, nil
}

var _ port.ReviewRepository = (*ReviewRepository)(nil)
