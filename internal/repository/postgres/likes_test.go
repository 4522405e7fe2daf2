package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/plateful/restaurant-review-api/internal/repository"
)

func TestLikeRepository_Add(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewLikeRepository(mock)

	mock.ExpectExec(`INSERT INTO review_likes`).
		WithArgs(int64(7), int64(42), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Add(context.Background(), 7, 42); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLikeRepository_AddDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewLikeRepository(mock)

	mock.ExpectExec(`INSERT INTO review_likes`).
		WithArgs(int64(7), int64(42), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "review_likes_user_id_review_id_key"})

	if err := repo.Add(context.Background(), 7, 42); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("Add error = %v, want %v", err, repository.ErrDuplicate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLikeRepository_RemoveMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewLikeRepository(mock)

	// squirrel renders Eq maps with sorted keys, so review_id binds first.
	mock.ExpectExec(`DELETE FROM review_likes`).
		WithArgs(int64(42), int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Remove(context.Background(), 7, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Remove error = %v, want %v", err, repository.ErrNotFound)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLikeRepository_CountByReview(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewLikeRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM review_likes`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountByReview(context.Background(), 42)
	if err != nil {
		t.Fatalf("CountByReview returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
