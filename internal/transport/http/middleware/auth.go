package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

const bearerPrefix = "Bearer "

// TokenVerifier is the slice of the token service the filter depends on.
type TokenVerifier interface {
	Validate(token string) bool
	Subject(token string) (string, error)
}

// PrincipalResolver turns a validated token subject into the
// request-scoped principal, typically via a user lookup.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, username string) (domain.Principal, error)
}

type authErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Authenticate is the engine-wide authentication filter. Public paths
// pass through untouched, with no principal attached. Protected paths
// must carry a valid bearer token whose subject resolves to a known
// user. Every failure mode collapses to 401 with a structured body;
// this filter never surfaces a 5xx.
func Authenticate(classifier PathClassifier, tokens TokenVerifier, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if classifier.Skip(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				authErrorBody{Error: "No token", Message: "Please log in first"})
			return
		}

		if !tokens.Validate(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				authErrorBody{Error: "Invalid token", Message: "Please log in again"})
			return
		}

		subject, err := tokens.Subject(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				authErrorBody{Error: "Authentication failed", Message: "Please log in again"})
			return
		}

		principal, err := resolver.ResolvePrincipal(c.Request.Context(), subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				authErrorBody{Error: "Authentication failed", Message: "Please log in again"})
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
// Returns "" when the header is absent, malformed or blank.
func bearerToken(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// RequireRole rejects requests whose principal lacks all of the given
// roles. Must run after Authenticate on a protected route.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				authErrorBody{Error: "Authentication failed", Message: "Please log in first"})
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			authErrorBody{Error: "Forbidden", Message: "Insufficient permissions"})
	}
}
