package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserHandler exposes the bridged identity's own profile.
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me handles GET /users/me. The profile is whatever the Authenticate
// middleware bridged; no extra lookup needed.
//
// @Summary      The caller's own identity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  identityResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityResponse{Data: identity})
}
