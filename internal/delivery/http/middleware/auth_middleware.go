package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// TokenVerifier is the part of the token service the gate needs.
type TokenVerifier interface {
	Validate(token string) bool
	SubjectOf(token string) (string, error)
}

// UserLoader resolves the stored user behind a token subject.
type UserLoader interface {
	GetCurrentUser(ctx context.Context, username string) (*domain.User, error)
}

// AuthGate resolves the bearer token of every request into a principal.
// Missing, invalid or orphaned tokens leave the request anonymous; the
// route's RequireRoles decides whether that is acceptable. A failing user
// lookup aborts the request with its error, so ErrorHandler must be
// registered before the gate.
func AuthGate(tokens TokenVerifier, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract bearer token
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		// 2. Validate signature and expiry
		if !tokens.Validate(token) {
			c.Next()
			return
		}
		username, err := tokens.SubjectOf(token)
		if err != nil {
			c.Next()
			return
		}

		// 3. Fetch fresh roles. Roles are never read from the token.
		user, err := users.GetCurrentUser(c.Request.Context(), username)
		if errors.Is(err, domain.ErrNotFound) {
			c.Next()
			return
		}
		if err != nil {
			// Store failures are not an anonymous caller; ErrorHandler renders the 500.
			_ = c.Error(fmt.Errorf("load token subject: %w", err))
			c.Abort()
			return
		}

		// 4. Populate the per-request security context
		principal := &domain.Principal{
			UserID:   user.ID,
			Username: user.Username,
			Roles:    user.Roles,
		}
		c.Set(string(domain.KeyPrincipal), principal)
		c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), principal))

		c.Next()
	}
}

// RequireRoles admits principals holding at least one of roles. With no
// roles it only requires authentication.
func RequireRoles(secLogger *security.SecurityLogger, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := domain.PrincipalFrom(c.Request.Context())
		if !ok {
			secLogger.LogAccessRejected(c.Request.Context(), http.StatusUnauthorized, "", c.ClientIP(), requestIDOf(c), c.Request.URL.Path)
			response.Unauthorized(c, domain.ErrUnauthenticated.Error())
			return
		}

		if len(roles) > 0 && !principal.HasAnyRole(roles...) {
			secLogger.LogAccessRejected(c.Request.Context(), http.StatusForbidden, principal.Username, c.ClientIP(), requestIDOf(c), c.Request.URL.Path)
			response.Forbidden(c, domain.ErrForbidden.Error())
			return
		}

		c.Next()
	}
}

// Authenticated is RequireRoles without a role constraint.
func Authenticated(secLogger *security.SecurityLogger) gin.HandlerFunc {
	return RequireRoles(secLogger)
}

// Principal returns the principal resolved by AuthGate, if any.
func Principal(c *gin.Context) (*domain.Principal, bool) {
	return domain.PrincipalFrom(c.Request.Context())
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}
