package ipd

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/visit"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With().Str("component", "ipd").Logger()}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/admissions", h.Admit)
	g.GET("/admissions", h.ListActive)
	g.GET("/admissions/:id", h.Get)
	g.POST("/admissions/:id/change-bed", h.ChangeBed)
	g.POST("/admissions/:id/discharge", h.Discharge)
	g.GET("/admissions/:id/bed-charges", h.BedCharges)
	g.GET("/patients/:patientId/admissions", h.ListByPatient)
}

func (h *Handler) Admit(c echo.Context) error {
	var req AdmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.Admit(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBedNotAvailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrVisitPatientMismatch),
			errors.Is(err, patient.ErrNotFound),
			errors.Is(err, visit.ErrNotFound):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	h.log.Info().Str("admission_id", a.AdmissionID).Str("patient_id", a.PatientID).
		Int("bed_id", a.BedID).Msg("patient admitted")
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	a, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, a)
}

type changeBedRequest struct {
	BedID int `json:"bed_id"`
}

func (h *Handler) ChangeBed(c echo.Context) error {
	var req changeBedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.ChangeBed(c.Request().Context(), c.Param("id"), req.BedID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		case errors.Is(err, ErrNotAdmitted), errors.Is(err, ErrBedNotAvailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return err
		}
	}

	h.log.Info().Str("admission_id", a.AdmissionID).Int("bed_id", a.BedID).Msg("bed changed")
	return c.JSON(http.StatusOK, a)
}

type dischargeRequest struct {
	DischargeDate *time.Time `json:"discharge_date,omitempty"`
}

func (h *Handler) Discharge(c echo.Context) error {
	var req dischargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.Discharge(c.Request().Context(), c.Param("id"), req.DischargeDate)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		case errors.Is(err, ErrNotAdmitted):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return err
		}
	}

	h.log.Info().Str("admission_id", a.AdmissionID).Msg("patient discharged")
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) BedCharges(c echo.Context) error {
	summary, err := h.svc.ComputeBedCharges(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "admission not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListActive(c echo.Context) error {
	p := pagination.FromContext(c)
	admissions, total, err := h.svc.ListActive(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(admissions, total, p.Limit, p.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	p := pagination.FromContext(c)
	admissions, total, err := h.svc.ListByPatient(c.Request().Context(), c.Param("patientId"), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(admissions, total, p.Limit, p.Offset))
}
