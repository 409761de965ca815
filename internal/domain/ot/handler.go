package ot

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/auth"
)

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With().Str("component", "ot").Logger()}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/ot-procedures", h.Create)
	g.GET("/ot-procedures/:id", h.Get)
	g.POST("/ot-procedures/:id/charges", h.AddCharges)
	g.GET("/admissions/:admissionId/ot-procedures", h.ListByAdmission)
	g.GET("/admissions/:admissionId/ot-charges", h.ListCharges)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.Create(c.Request().Context(), req, actor)
	if err != nil {
		return otError(err)
	}

	h.log.Info().Str("ot_id", p.OTID).Str("admission_id", p.AdmissionID).
		Str("operation", p.OperationName).Msg("ot procedure recorded")
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return otError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) AddCharges(c echo.Context) error {
	var req ChargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.UserIDFromContext(c.Request().Context())
	charges, err := h.svc.AddCharges(c.Request().Context(), c.Param("id"), req, actor)
	if err != nil {
		return otError(err)
	}

	h.log.Info().Str("ot_id", c.Param("id")).Int("count", len(charges)).Msg("ot charges posted")
	return c.JSON(http.StatusCreated, charges)
}

func (h *Handler) ListByAdmission(c echo.Context) error {
	procedures, err := h.svc.ListByAdmission(c.Request().Context(), c.Param("admissionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, procedures)
}

func (h *Handler) ListCharges(c echo.Context) error {
	charges, err := h.svc.ListCharges(c.Request().Context(), c.Param("admissionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, charges)
}

func otError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "ot procedure not found")
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
