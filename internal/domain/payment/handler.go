package payment

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/auth"
)

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With().Str("component", "payment").Logger()}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/payments", h.Record)
	g.GET("/payments/:id", h.Get)
	g.POST("/admissions/:admissionId/advance", h.RecordAdvance)
	g.GET("/patients/:patientId/payments", h.ListForPatient)
	g.GET("/patients/:patientId/balance", h.Balance)
	g.GET("/payments/daily-collection", h.DailyCollection)
}

func (h *Handler) Record(c echo.Context) error {
	var req RecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.Record(c.Request().Context(), req, actor)
	if err != nil {
		return paymentError(err)
	}

	h.log.Info().Str("payment_id", p.PaymentID).Str("patient_id", p.PatientID).
		Str("mode", string(p.Mode)).Str("amount", p.Amount.StringFixed(2)).Msg("payment recorded")
	return c.JSON(http.StatusCreated, p)
}

type advanceRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Mode           string          `json:"payment_mode"`
	TransactionRef *string         `json:"transaction_reference,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}

func (h *Handler) RecordAdvance(c echo.Context) error {
	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.RecordAdvance(c.Request().Context(), c.Param("admissionId"),
		req.Amount, req.Mode, req.TransactionRef, req.Notes, actor)
	if err != nil {
		return paymentError(err)
	}

	h.log.Info().Str("payment_id", p.PaymentID).Str("admission_id", c.Param("admissionId")).
		Str("amount", p.Amount.StringFixed(2)).Msg("advance recorded")
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return paymentError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	payments, err := h.svc.List(c.Request().Context(), PatientScope(c.Param("patientId")))
	if err != nil {
		return paymentError(err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *Handler) Balance(c echo.Context) error {
	var visitID, admissionID *string
	if v := c.QueryParam("visit_id"); v != "" {
		visitID = &v
	}
	if a := c.QueryParam("admission_id"); a != "" {
		admissionID = &a
	}

	b, err := h.svc.CalculateBalance(c.Request().Context(), c.Param("patientId"), visitID, admissionID)
	if err != nil {
		return paymentError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DailyCollection(c echo.Context) error {
	var day *time.Time
	if d := c.QueryParam("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = &parsed
	}

	total, err := h.svc.DailyCollection(c.Request().Context(), day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"total": total.StringFixed(2)})
}

func paymentError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "payment not found")
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
