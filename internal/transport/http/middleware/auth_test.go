package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

type stubVerifier struct {
	valid   bool
	subject string
	err     error
}

func (s *stubVerifier) Validate(string) bool { return s.valid }

func (s *stubVerifier) Subject(string) (string, error) { return s.subject, s.err }

type stubResolver struct {
	principal domain.Principal
	err       error
}

func (s *stubResolver) ResolvePrincipal(_ context.Context, _ string) (domain.Principal, error) {
	return s.principal, s.err
}

func newAuthRouter(verifier *stubVerifier, resolver *stubResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Authenticate(NewPathClassifier(), verifier, resolver))

	router.GET("/restaurants", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/restaurants/:id/favorite", func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": principal.Username})
	})

	return router
}

func decodeAuthError(t *testing.T, rec *httptest.ResponseRecorder) authErrorBody {
	t.Helper()
	var body authErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestAuthenticateSkipsPublicPath(t *testing.T) {
	router := newAuthRouter(&stubVerifier{}, &stubResolver{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/restaurants", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	router := newAuthRouter(&stubVerifier{valid: true}, &stubResolver{})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"blank token", "Bearer   "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/restaurants/1/favorite", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if body := decodeAuthError(t, rec); body.Error != "No token" {
				t.Fatalf("error = %q, want %q", body.Error, "No token")
			}
		})
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	router := newAuthRouter(&stubVerifier{valid: false}, &stubResolver{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/restaurants/1/favorite", nil)
	req.Header.Set("Authorization", "Bearer tampered")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if body := decodeAuthError(t, rec); body.Error != "Invalid token" {
		t.Fatalf("error = %q, want %q", body.Error, "Invalid token")
	}
}

func TestAuthenticateResolverFailureIsNever5xx(t *testing.T) {
	verifier := &stubVerifier{valid: true, subject: "alice"}
	resolver := &stubResolver{err: errors.New("db down")}
	router := newAuthRouter(verifier, resolver)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/restaurants/1/favorite", nil)
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if body := decodeAuthError(t, rec); body.Error != "Authentication failed" {
		t.Fatalf("error = %q, want %q", body.Error, "Authentication failed")
	}
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	verifier := &stubVerifier{valid: true, subject: "alice"}
	resolver := &stubResolver{principal: domain.Principal{UserID: 7, Username: "alice", Role: domain.RoleReviewer}}
	router := newAuthRouter(verifier, resolver)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/restaurants/1/favorite", nil)
	req.Header.Set("Authorization", "Bearer token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["user"] != "alice" {
		t.Fatalf("user = %q, want %q", body["user"], "alice")
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(principal *domain.Principal) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if principal != nil {
				SetPrincipal(c, *principal)
			}
			c.Next()
		})
		router.DELETE("/restaurants/:id", RequireRole(domain.RoleAdmin), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return router
	}

	cases := []struct {
		name      string
		principal *domain.Principal
		want      int
	}{
		{"admin allowed", &domain.Principal{UserID: 1, Role: domain.RoleAdmin}, http.StatusNoContent},
		{"reviewer forbidden", &domain.Principal{UserID: 2, Role: domain.RoleReviewer}, http.StatusForbidden},
		{"no principal unauthorized", nil, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/restaurants/1", nil)
			newRouter(tc.principal).ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
