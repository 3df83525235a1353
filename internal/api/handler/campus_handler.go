package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

// CampusHandler handles HTTP requests for campus lifecycle operations.
type CampusHandler struct {
	service ports.CampusService
}

func NewCampusHandler(service ports.CampusService) *CampusHandler {
	return &CampusHandler{service: service}
}

type registerCampusRequest struct {
	Name         string `json:"name"         validate:"required,min=3"`
	Type         string `json:"type"         validate:"required,oneof=UNIVERSITY COLLEGE SCHOOL CORPORATE"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
}

type reviewCampusRequest struct {
	Action string `json:"action" validate:"required,oneof=APPROVE REJECT"`
}

type inviteStaffRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type campusResponse struct {
	Message string         `json:"message,omitempty"`
	Data    *domain.Campus `json:"data"`
}

type campusListResponse struct {
	Data []*domain.Campus `json:"data"`
}

type memberListResponse struct {
	Data []*ports.CampusMember `json:"data"`
}

type identityResponse struct {
	Message string           `json:"message,omitempty"`
	Data    *domain.Identity `json:"data"`
}

// Register handles POST /campuses/register.
//
// @Summary      Register a new campus (becomes its ADMIN)
// @Tags         campuses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerCampusRequest  true  "Campus details"
// @Success      201   {object}  campusResponse
// @Failure      400   {object}  errorResponse
// @Router       /campuses/register [post]
func (h *CampusHandler) Register(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req registerCampusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	campus, err := h.service.Register(c.Request().Context(), identity, ports.RegisterCampusInput{
		Name:         req.Name,
		Type:         req.Type,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, campusResponse{Message: "Campus registered, pending review", Data: campus})
}

// Review handles PATCH /campuses/:id/review.
//
// @Summary      Approve or reject a pending campus
// @Tags         campuses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Campus id"
// @Param        body  body      reviewCampusRequest  true  "APPROVE or REJECT"
// @Success      200   {object}  campusResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /campuses/{id}/review [patch]
func (h *CampusHandler) Review(c echo.Context) error {
	var req reviewCampusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	campus, err := h.service.Review(c.Request().Context(), c.Param("id"), req.Action == "APPROVE")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, campusResponse{Message: "Campus reviewed", Data: campus})
}

// ListPending handles GET /campuses/pending.
//
// @Summary      List campuses awaiting review
// @Tags         campuses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  campusListResponse
// @Router       /campuses/pending [get]
func (h *CampusHandler) ListPending(c echo.Context) error {
	campuses, err := h.service.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, campusListResponse{Data: campuses})
}

// ListActive handles GET /campuses/active. Public: onboarding needs the
// list before the caller has a campus.
//
// @Summary      List active campuses
// @Tags         campuses
// @Produce      json
// @Success      200  {object}  campusListResponse
// @Router       /campuses/active [get]
func (h *CampusHandler) ListActive(c echo.Context) error {
	campuses, err := h.service.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, campusListResponse{Data: campuses})
}

// InviteStaff handles POST /campuses/staff.
//
// @Summary      Pre-provision a MANAGER identity in the caller's campus
// @Tags         campuses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      inviteStaffRequest  true  "Staff email"
// @Success      201   {object}  identityResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /campuses/staff [post]
func (h *CampusHandler) InviteStaff(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req inviteStaffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	invited, err := h.service.InviteStaff(c.Request().Context(), identity, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, identityResponse{Message: "Staff invited", Data: invited})
}

// Members handles GET /campuses/members.
//
// @Summary      Campus roster with live presence flags
// @Tags         campuses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  memberListResponse
// @Failure      400  {object}  errorResponse
// @Router       /campuses/members [get]
func (h *CampusHandler) Members(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	members, err := h.service.Members(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, memberListResponse{Data: members})
}
