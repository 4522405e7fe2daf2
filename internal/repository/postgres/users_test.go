package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	user := domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "salt:hash",
		Role:         domain.RoleReviewer,
		CreatedAt:    createdAt,
	}

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.Username, user.Email, user.PasswordHash, string(user.Role), nil, createdAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := repo.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicateUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", "salt:hash", "REVIEWER", nil, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err = repo.Create(context.Background(), domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "salt:hash",
		Role:         domain.RoleReviewer,
		CreatedAt:    time.Now().UTC(),
	})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("Create error = %v, want %v", err, repository.ErrDuplicate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "profile_picture", "created_at"}).
		AddRow(int64(1), "alice", "alice@example.com", "salt:hash", "REVIEWER", nil, createdAt)

	mock.ExpectQuery(`SELECT id, username, email, password_hash, role, profile_picture, created_at FROM users`).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.Role != domain.RoleReviewer {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.ProfilePicture != nil {
		t.Fatalf("profile picture = %v, want nil", *user.ProfilePicture)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT id, username, email, password_hash, role, profile_picture, created_at FROM users`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), 99); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByID error = %v, want %v", err, repository.ErrNotFound)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
