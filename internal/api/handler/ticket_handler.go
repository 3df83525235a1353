package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

// TicketHandler handles HTTP requests for ticket operations.
type TicketHandler struct {
	service ports.TicketService
}

func NewTicketHandler(service ports.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// Create handles POST /tickets.
//
// @Summary      File a new facility issue
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTicketRequest  true  "Ticket details"
// @Success      201   {object}  createTicketResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Create(c.Request().Context(), identity, ports.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createTicketResponse{
		Message: "Ticket raised successfully",
		Data:    result.Ticket,
		AIAnalysis: aiAnalysisResponse{
			Category: result.Analysis.Category,
			Priority: result.Analysis.Priority,
			Summary:  result.Analysis.Summary,
			IsHazard: result.Analysis.IsHazard,
		},
	})
}

// UpdateStatus handles PATCH /tickets/:id/status.
//
// @Summary      Transition a ticket's status
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "Ticket id"
// @Param        body  body      updateTicketStatusRequest  true  "New status"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tickets/{id}/status [patch]
func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateTicketStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ticket, err := h.service.UpdateStatus(c.Request().Context(), identity, c.Param("id"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ticketResponse{
		Message: "Ticket status updated",
		Data:    ticket,
	})
}

// ListMine handles GET /tickets/my-tickets.
//
// @Summary      List the caller's own tickets
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ticketListResponse
// @Failure      400  {object}  errorResponse
// @Router       /tickets/my-tickets [get]
func (h *TicketHandler) ListMine(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	tickets, err := h.service.ListMine(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticketListResponse{Data: tickets})
}

// ListAll handles GET /tickets/all.
//
// @Summary      List every ticket of the caller's campus
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ticketListResponse
// @Failure      403  {object}  errorResponse
// @Router       /tickets/all [get]
func (h *TicketHandler) ListAll(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	tickets, err := h.service.ListAll(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticketListResponse{Data: tickets})
}
