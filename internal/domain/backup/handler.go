package backup

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes snapshot creation and listing. Admin only; the wiring
// applies the role guard.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(g *echo.Group, admin echo.MiddlewareFunc) {
	g.POST("/backups", h.Create, admin)
	g.GET("/backups", h.List, admin)
}

type createRequest struct {
	Name string `json:"name,omitempty"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	meta, err := h.svc.Create(c.Request().Context(), req.Name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, meta)
}

func (h *Handler) List(c echo.Context) error {
	backups, err := h.svc.List()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, backups)
}
