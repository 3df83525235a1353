package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

// IdentityKey is the echo context key the authenticated identity is stored
// under.
const IdentityKey = "identity"

// sessionCookie is the identity provider's session cookie name, accepted as
// an alternative to the Authorization header.
const sessionCookie = "__session"

// Authenticate extracts the bearer credential, bridges it through the
// identity service, and injects the resulting local identity into the
// context. Missing or invalid credentials yield 401 without retry.
func Authenticate(identities ports.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication token not found")
			}

			identity, err := identities.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
				}
				// Anything else is an upstream failure (identity store,
				// provider outage), not the caller's credential. Let the
				// central handler log it and answer 500.
				return fmt.Errorf("authenticate: %w", err)
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// bearerToken pulls the credential from the session cookie or the
// Authorization header, cookie first.
func bearerToken(c echo.Context) string {
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
