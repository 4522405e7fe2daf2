package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

// LikeRepository implements port.LikeRepository using PostgreSQL. The
// review_likes table carries a unique (user_id, review_id) constraint
// so concurrent double likes collapse into repository.ErrDuplicate.
type LikeRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewLikeRepository wires a like repository backed by any executor
// that satisfies pgExecutor.
func NewLikeRepository(exec pgExecutor) *LikeRepository {
	repo := &LikeRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *LikeRepository) WithTx(tx pgx.Tx) *LikeRepository {
	if tx == nil {
		return r
	}
	return &LikeRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Add records a like. Fails with repository.ErrDuplicate if the user
// already liked the review.
func (r *LikeRepository) Add(ctx context.Context, userID, reviewID int64) error {
	stmt, args, err := r.builder.Insert("review_likes").
		Columns("user_id", "review_id", "created_at").
		Values(userID, reviewID, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert like sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

// Remove deletes a like. Fails with repository.ErrNotFound if the user
// never liked the review.
func (r *LikeRepository) Remove(ctx context.Context, userID, reviewID int64) error {
	stmt, args, err := r.builder.Delete("review_likes").
		Where(squirrel.Eq{"user_id": userID, "review_id": reviewID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete like sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Exists reports whether the user already liked the review.
func (r *LikeRepository) Exists(ctx context.Context, userID, reviewID int64) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("review_likes").
		Where(squirrel.Eq{"user_id": userID, "review_id": reviewID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select like sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("select like: %w", err)
	}

	return true, nil
}

// CountByReview returns the number of likes a review has received.
func (r *LikeRepository) CountByReview(ctx context.Context, reviewID int64) (int64, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("review_likes").
		Where(squirrel.Eq{"review_id": reviewID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count likes sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return count, nil
}

// RemoveByReview deletes every like attached to a review.
func (r *LikeRepository) RemoveByReview(ctx context.Context, reviewID int64) error {
	stmt, args, err := r.builder.Delete("review_likes").
		Where(squirrel.Eq{"review_id": reviewID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete likes by review sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete likes by review: %w", err)
	}

	return nil
}

var _ port.LikeRepository = (*LikeRepository)(nil)
