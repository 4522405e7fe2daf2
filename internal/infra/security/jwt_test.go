package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

var testPrincipal = domain.Principal{UserID: 7, Username: "alice", Role: domain.RoleReviewer}

func newTestTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret", ttl)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestNewTokenServiceRejectsEmptySecret(t *testing.T) {
	cases := []string{"", "   "}
	for _, secret := range cases {
		if _, err := NewTokenService(secret, time.Hour); !errors.Is(err, ErrEmptySecret) {
			t.Fatalf("NewTokenService(%q) err = %v, want %v", secret, err, ErrEmptySecret)
		}
	}
}

func TestNewTokenServiceRejectsNonPositiveTTL(t *testing.T) {
	if _, err := NewTokenService("secret", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
	if _, err := NewTokenService("secret", -time.Hour); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.Issue(testPrincipal)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !svc.Validate(token) {
		t.Fatal("freshly issued token must validate")
	}

	subject, err := svc.Subject(token)
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if subject != testPrincipal.Username {
		t.Fatalf("subject = %q, want %q", subject, testPrincipal.Username)
	}

	role, err := svc.Role(token)
	if err != nil {
		t.Fatalf("Role: %v", err)
	}
	if role != domain.RoleReviewer {
		t.Fatalf("role = %q, want %q", role, domain.RoleReviewer)
	}

	claims, err := svc.Claims(token)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.UserID != testPrincipal.UserID {
		t.Fatalf("uid = %d, want %d", claims.UserID, testPrincipal.UserID)
	}
}

func TestValidateAfterExpiry(t *testing.T) {
	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, time.Minute).WithClock(func() time.Time { return base })

	token, err := svc.Issue(testPrincipal)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !svc.Validate(token) {
		t.Fatal("token must validate before expiry")
	}

	svc.WithClock(func() time.Time { return base.Add(2 * time.Minute) })
	if svc.Validate(token) {
		t.Fatal("token must not validate after clock advances past expiry")
	}
}

func TestValidateTamperedToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.Issue(testPrincipal)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Flip one character in the payload segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if svc.Validate(tampered) {
		t.Fatal("tampered token must not validate")
	}
}

func TestValidateGarbageNeverPanics(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	cases := []string{"", "   ", "not-a-token", "a.b.c", strings.Repeat("x", 4096)}
	for _, token := range cases {
		if svc.Validate(token) {
			t.Fatalf("Validate(%q) = true, want false", token)
		}
	}
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := newTestTokenService(t, time.Hour)
	verifier, err := NewTokenService("different-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := issuer.Issue(testPrincipal)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if verifier.Validate(token) {
		t.Fatal("token signed with another secret must not validate")
	}
}
