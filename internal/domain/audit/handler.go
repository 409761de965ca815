package audit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handler exposes the read side of the trail. Writes only happen through the
// service calls embedded in billing and master-data updates.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(g *echo.Group) {
	g.GET("/audit-logs", h.ListRecent)
	g.GET("/audit-logs/:id", h.Get)
	g.GET("/audit-logs/record/:table/:recordId", h.ListByRecord)
	g.GET("/audit-logs/user/:userId", h.ListByUser)
}

func (h *Handler) Get(c echo.Context) error {
	e, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "audit entry not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListRecent(c echo.Context) error {
	limit := queryLimit(c)
	if action := c.QueryParam("action"); action != "" {
		entries, err := h.svc.ListByAction(c.Request().Context(), ActionType(action), limit)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, entries)
	}

	entries, err := h.svc.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListByRecord(c echo.Context) error {
	entries, err := h.svc.ListByRecord(c.Request().Context(), c.Param("table"), c.Param("recordId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListByUser(c echo.Context) error {
	entries, err := h.svc.ListByUser(c.Request().Context(), c.Param("userId"), queryLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func queryLimit(c echo.Context) int {
	n, _ := strconv.Atoi(c.QueryParam("limit"))
	return n
}
