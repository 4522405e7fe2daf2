package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

// ErrEmptySecret indicates the service was constructed without a signing
// secret. This is a configuration fault and aborts startup.
var ErrEmptySecret = errors.New("jwt: signing secret must not be empty")

// Claims carries the identity embedded in an access token. The subject
// registered claim holds the username.
type Claims struct {
	Role   string `json:"role"`
	UserID int64  `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 access tokens. The signing
// secret is process-wide and read-only after construction; validity of a
// token is purely signature plus expiry, there is no revocation list.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. An empty secret is rejected
// here so that misconfiguration surfaces at startup rather than on the
// first request.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: token ttl must be positive, got %s", ttl)
	}

	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock injects a custom clock, primarily for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	if now != nil {
		s.now = now
	}
	return s
}

// Issue signs a token for the principal. The username becomes the
// subject; role and user id travel as private claims.
func (s *TokenService) Issue(p domain.Principal) (string, error) {
	now := s.now().UTC()

	claims := Claims{
		Role:   string(p.Role),
		UserID: p.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate reports whether the token parses, carries a valid signature
// and has not expired. It never returns an error: expired, malformed,
// tampered and otherwise broken tokens all yield false, and no parser
// detail leaks to the caller.
func (s *TokenService) Validate(token string) bool {
	_, err := s.parse(token)
	return err == nil
}

// Subject returns the username embedded in the token. Callers must
// Validate first; expired or malformed tokens yield an error here.
func (s *TokenService) Subject(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Role returns the role claim, or an error when the token does not parse
// or the role is not a known one.
func (s *TokenService) Role(token string) (domain.Role, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return domain.ParseRole(claims.Role)
}

// Claims parses and verifies the token, returning all embedded claims.
func (s *TokenService) Claims(token string) (*Claims, error) {
	return s.parse(token)
}

func (s *TokenService) parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	if parsed == nil || !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	return claims, nil
}
