package bed

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/auth"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/beds", h.List)
	api.GET("/beds/:id", h.Get)
	api.GET("/beds/occupancy", h.Occupancy)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/beds", h.Create)
	admin.PUT("/beds/:id/maintenance", h.SetMaintenance)
	admin.PUT("/beds/:id/rate", h.UpdateRate)
}

func (h *Handler) Create(c echo.Context) error {
	var b Bed
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &b); err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func bedID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid bed id")
	}
	return id, nil
}

func (h *Handler) Get(c echo.Context) error {
	id, err := bedID(c)
	if err != nil {
		return err
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) List(c echo.Context) error {
	params := pagination.FromContext(c)

	beds, total, err := h.svc.List(c.Request().Context(),
		WardType(c.QueryParam("ward_type")), Status(c.QueryParam("status")),
		params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(beds, total, params.Limit, params.Offset))
}

func (h *Handler) Occupancy(c echo.Context) error {
	stats, err := h.svc.Occupancy(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

type maintenanceRequest struct {
	UnderMaintenance bool `json:"under_maintenance"`
}

func (h *Handler) SetMaintenance(c echo.Context) error {
	id, err := bedID(c)
	if err != nil {
		return err
	}
	var req maintenanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.svc.SetMaintenance(c.Request().Context(), id, req.UnderMaintenance)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, b)
}

type rateRequest struct {
	PerDayCharge decimal.Decimal `json:"per_day_charge"`
}

func (h *Handler) UpdateRate(c echo.Context) error {
	id, err := bedID(c)
	if err != nil {
		return err
	}
	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.UserIDFromContext(c.Request().Context())
	b, err := h.svc.UpdateRate(c.Request().Context(), id, req.PerDayCharge, actor)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}
