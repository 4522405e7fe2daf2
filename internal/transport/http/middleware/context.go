package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

// principalKey is the gin context key carrying the authenticated
// principal. The principal lives only for the duration of the request;
// nothing outside the request context ever holds it.
const principalKey = "principal"

// SetPrincipal attaches the authenticated principal to the request context.
func SetPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalKey, principal)
}

// GetPrincipal retrieves the authenticated principal, if any.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	return principal, ok
}
