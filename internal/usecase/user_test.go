package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/infra/security"
)

func newTestUserService(t *testing.T) (*UserService, *stubUserRepo) {
	t.Helper()

	users := newStubUserRepo()
	likes := newStubLikeRepo()
	reviews := newStubReviewRepo(likes)
	restaurants := newStubRestaurantRepo()
	favorites := newStubFavoriteRepo(restaurants)

	tokens, err := security.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	svc := NewUserService(users, reviews, restaurants, favorites, tokens, nil, nil)
	return svc, users
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", Email: "alice@example.com"}); err != nil {
		t.Fatalf("valid registration failed: %v", err)
	}

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"duplicate username", RegisterInput{Username: "alice", Password: "secret1", Email: "a2@example.com"}, ErrUsernameTaken},
		{"short password", RegisterInput{Username: "bob", Password: "12345", Email: "bob@example.com"}, ErrPasswordTooShort},
		{"malformed email", RegisterInput{Username: "carol", Password: "secret1", Email: "not-an-email"}, ErrInvalidEmail},
		{"blank username", RegisterInput{Username: "  ", Password: "secret1", Email: "d@example.com"}, ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterDefaultsToReviewerRole(t *testing.T) {
	svc, users := newTestUserService(t)

	view, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if view.Role != string(domain.RoleReviewer) {
		t.Fatalf("role = %q, want %q", view.Role, domain.RoleReviewer)
	}

	stored, err := users.GetByID(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.PasswordHash == "secret1" || stored.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", Email: "alice@example.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Authenticate(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestResolvePrincipal(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	view, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	principal, err := svc.ResolvePrincipal(ctx, "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.UserID != view.ID || principal.Username != "alice" || principal.Role != domain.RoleReviewer {
		t.Fatalf("unexpected principal %+v", principal)
	}

	if _, err := svc.ResolvePrincipal(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrUserNotFound)
	}
}

func TestUpdateProfileAuthorization(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	self := domain.Principal{UserID: alice.ID, Username: "alice", Role: domain.RoleReviewer}
	stranger := domain.Principal{UserID: alice.ID + 100, Username: "mallory", Role: domain.RoleReviewer}
	admin := domain.Principal{UserID: alice.ID + 200, Username: "root", Role: domain.RoleAdmin}

	if _, err := svc.UpdateProfile(ctx, stranger, alice.ID, UpdateProfileInput{Email: "new@example.com"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger err = %v, want %v", err, ErrForbidden)
	}

	updated, err := svc.UpdateProfile(ctx, self, alice.ID, UpdateProfileInput{Email: "new@example.com"})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Fatalf("email = %q, want new@example.com", updated.Email)
	}

	if _, err := svc.UpdateProfile(ctx, admin, alice.ID, UpdateProfileInput{Email: "admin@example.com"}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}
