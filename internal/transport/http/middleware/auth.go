package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vmarchenko/contacts-api/internal/domain"
)

const (
	errUnauthorized = "Unauthorized"
	errNotVerified  = "Email not verified. Action forbidden."

	callerKey = "caller"
)

// callerResolver is the subset of AuthUsecase the middleware needs.
type callerResolver interface {
	CurrentUser(ctx context.Context, rawToken string) (*domain.User, error)
}

// Auth resolves the caller from a Bearer access token and stores the
// user in the gin context. Bad or expired tokens get 401; a valid token
// whose user has not confirmed their email gets 403 — authenticated,
// but not yet allowed to act.
func Auth(resolver callerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		user, err := resolver.CurrentUser(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, domain.ErrEmailNotVerified) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errNotVerified})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set(callerKey, user)
		c.Next()
	}
}

// CallerFromContext returns the user stored by Auth. Must only be called
// from handlers behind the Auth middleware.
func CallerFromContext(c *gin.Context) *domain.User {
	return c.MustGet(callerKey).(*domain.User)
}
