package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/api/middleware"
	"github.com/campuscare/campuscare/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Authenticate middleware.
// Its presence proves the middleware ran; a handler reached without it is a
// wiring bug surfaced as 401, not a panic.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	identity, ok := c.Get(middleware.IdentityKey).(*domain.Identity)
	if !ok || identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return identity, nil
}
