package discharge

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ipd"
)

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With().Str("component", "discharge").Logger()}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("/admissions/:admissionId/discharge-bill", h.Bill)
	g.GET("/admissions/:admissionId/pending-amount", h.Pending)
	g.POST("/admissions/:admissionId/process-discharge", h.Process)
}

func (h *Handler) Bill(c echo.Context) error {
	bill, err := h.svc.GenerateBill(c.Request().Context(), c.Param("admissionId"))
	if err != nil {
		return dischargeError(err)
	}
	return c.JSON(http.StatusOK, bill)
}

func (h *Handler) Pending(c echo.Context) error {
	due, err := h.svc.PendingAmount(c.Request().Context(), c.Param("admissionId"))
	if err != nil {
		return dischargeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"balance_due": due.StringFixed(2)})
}

type processRequest struct {
	DischargeDate *time.Time `json:"discharge_date,omitempty"`
}

func (h *Handler) Process(c echo.Context) error {
	var req processRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.ProcessDischarge(c.Request().Context(), c.Param("admissionId"), req.DischargeDate)
	if err != nil {
		return dischargeError(err)
	}

	h.log.Info().Str("admission_id", a.AdmissionID).Msg("discharge processed")
	return c.JSON(http.StatusOK, a)
}

func dischargeError(err error) error {
	switch {
	case errors.Is(err, ipd.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "admission not found")
	case errors.Is(err, ipd.ErrNotAdmitted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return err
}
