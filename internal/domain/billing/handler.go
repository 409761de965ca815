package billing

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
	return &Handler{svc: svc, log: log.With().Str("component", "billing").Logger()}
}

func (h *Handler) Register(g *echo.Group, admin echo.MiddlewareFunc) {
	g.POST("/charges", h.AddCharges)
	g.GET("/charges/:id", h.Get)
	g.PUT("/charges/:id", h.Update)
	g.DELETE("/charges/:id", h.Delete, admin)
	g.GET("/visits/:visitId/charges", h.ListForVisit)
	g.GET("/admissions/:admissionId/charges", h.ListForAdmission)
}

type addChargesRequest struct {
	Target
	ChargeType ChargeType    `json:"charge_type"`
	Charges    []ChargeInput `json:"charges"`
}

func (h *Handler) AddCharges(c echo.Context) error {
	var req addChargesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.UserIDFromContext(c.Request().Context())
	if req.ChargeType == TypeManual && !auth.HasRole(c.Request().Context(), auth.RoleAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "manual charges require admin role")
	}

	charges, err := h.svc.AddCharges(c.Request().Context(), req.Target, req.ChargeType, req.Charges, actor)
	if err != nil {
		return chargeError(err)
	}

	h.log.Info().Int("count", len(charges)).Str("charge_type", string(req.ChargeType)).
		Str("actor", actor).Msg("charges posted")
	return c.JSON(http.StatusCreated, charges)
}

func (h *Handler) Get(c echo.Context) error {
	charge, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return chargeError(err)
	}
	return c.JSON(http.StatusOK, charge)
}

func (h *Handler) Update(c echo.Context) error {
	var upd ChargeUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.UserIDFromContext(c.Request().Context())
	charge, err := h.svc.UpdateCharge(c.Request().Context(), c.Param("id"), upd, actor)
	if err != nil {
		return chargeError(err)
	}

	h.log.Info().Str("charge_id", charge.ChargeID).Str("actor", actor).Msg("charge updated")
	return c.JSON(http.StatusOK, charge)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return chargeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListForVisit(c echo.Context) error {
	return h.list(c, VisitTarget(c.Param("visitId")))
}

func (h *Handler) ListForAdmission(c echo.Context) error {
	return h.list(c, AdmissionTarget(c.Param("admissionId")))
}

func (h *Handler) list(c echo.Context, target Target) error {
	if ct := c.QueryParam("type"); ct != "" {
		charges, err := h.svc.ListByTargetAndType(c.Request().Context(), target, ChargeType(ct))
		if err != nil {
			return chargeError(err)
		}
		return c.JSON(http.StatusOK, charges)
	}

	charges, err := h.svc.ListByTarget(c.Request().Context(), target)
	if err != nil {
		return chargeError(err)
	}
	return c.JSON(http.StatusOK, charges)
}

func chargeError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "charge not found")
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
