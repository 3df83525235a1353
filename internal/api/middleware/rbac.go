package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/core/domain"
)

// RequireRole passes only identities whose role is in the allowed set.
// The 403 body never says whether the failure was role- or tenant-based.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := c.Get(IdentityKey).(*domain.Identity)
			if !ok || identity == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if _, ok := allowed[identity.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// RequireMinimumRole passes identities whose authority level is at least
// that of min (USER < MANAGER < ADMIN < SUPER_ADMIN).
func RequireMinimumRole(min domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := c.Get(IdentityKey).(*domain.Identity)
			if !ok || identity == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !identity.Role.AtLeast(min) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
