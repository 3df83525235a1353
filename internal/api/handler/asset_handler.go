package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

// AssetHandler handles HTTP requests for asset operations.
type AssetHandler struct {
	service ports.AssetService
}

func NewAssetHandler(service ports.AssetService) *AssetHandler {
	return &AssetHandler{service: service}
}

type createAssetRequest struct {
	Name     string `json:"name"     validate:"required"`
	Type     string `json:"type"     validate:"required"`
	Location string `json:"location" validate:"required"`
}

// updateRiskRequest uses a pointer so a risk of exactly 0 is distinguishable
// from a missing field.
type updateRiskRequest struct {
	FailureRisk *float64 `json:"failureRisk" validate:"required,gte=0,lte=1"`
}

type assetResponse struct {
	Message string        `json:"message,omitempty"`
	Data    *domain.Asset `json:"data"`
}

type assetListResponse struct {
	Data []*domain.Asset `json:"data"`
}

// Create handles POST /assets.
//
// @Summary      Register a new infrastructure asset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAssetRequest  true  "Asset details"
// @Success      201   {object}  assetResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /assets [post]
func (h *AssetHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createAssetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	asset, err := h.service.Create(c.Request().Context(), identity, ports.CreateAssetInput{
		Name:     req.Name,
		Type:     req.Type,
		Location: req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, assetResponse{Message: "Asset registered", Data: asset})
}

// List handles GET /assets.
//
// @Summary      List the caller's campus assets, riskiest first
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  assetListResponse
// @Failure      400  {object}  errorResponse
// @Router       /assets [get]
func (h *AssetHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	assets, err := h.service.List(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assetListResponse{Data: assets})
}

// UpdateRisk handles PATCH /assets/:id/risk.
//
// @Summary      Update an asset's failure risk
// @Tags         assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Asset id"
// @Param        body  body      updateRiskRequest  true  "New failure risk in [0,1]"
// @Success      200   {object}  assetResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /assets/{id}/risk [patch]
func (h *AssetHandler) UpdateRisk(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateRiskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	asset, err := h.service.UpdateRisk(c.Request().Context(), identity, c.Param("id"), *req.FailureRisk)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assetResponse{Message: "Asset risk updated", Data: asset})
}

// HealthScore handles GET /assets/health-score.
//
// @Summary      Derived campus health score
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.CampusHealth
// @Failure      400  {object}  errorResponse
// @Router       /assets/health-score [get]
func (h *AssetHandler) HealthScore(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	health, err := h.service.HealthScore(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, health)
}
