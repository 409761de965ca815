package employee

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

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
	api.GET("/employees", h.List)
	api.GET("/employees/:id", h.Get)

	// Staff and payroll management is privileged.
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/employees", h.Create)
	admin.PUT("/employees/:id", h.Update)
	admin.DELETE("/employees/:id", h.Deactivate)
	admin.GET("/employees/:id/salary-slip", h.SalarySlip)
	admin.POST("/salary-payments", h.RecordPayment)
	admin.GET("/salary-payments", h.ListPayments)
	admin.GET("/salary-payments/:id", h.GetPayment)
	admin.PUT("/salary-payments/:id/paid", h.MarkPaid)
}

func (h *Handler) Create(c echo.Context) error {
	var e Employee
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) Get(c echo.Context) error {
	e, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) List(c echo.Context) error {
	params := pagination.FromContext(c)

	employees, total, err := h.svc.List(c.Request().Context(), Status(c.QueryParam("status")), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(employees, total, params.Limit, params.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	e, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Deactivate(c echo.Context) error {
	if err := h.svc.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SalarySlip(c echo.Context) error {
	month, _ := strconv.Atoi(c.QueryParam("month"))
	year, _ := strconv.Atoi(c.QueryParam("year"))

	slip, err := h.svc.SalarySlip(c.Request().Context(), c.Param("id"), month, year)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInactive):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, slip)
}

func (h *Handler) RecordPayment(c echo.Context) error {
	var in PaymentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.RecordPayment(c.Request().Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrDuplicatePayment):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPayment(c echo.Context) error {
	p, err := h.svc.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPayments(c echo.Context) error {
	params := pagination.FromContext(c)
	month, _ := strconv.Atoi(c.QueryParam("month"))
	year, _ := strconv.Atoi(c.QueryParam("year"))

	f := PaymentFilter{
		EmployeeID: c.QueryParam("employee_id"),
		Month:      month,
		Year:       year,
		Status:     SalaryStatus(c.QueryParam("status")),
	}
	payments, total, err := h.svc.ListPayments(c.Request().Context(), f, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(payments, total, params.Limit, params.Offset))
}

type markPaidRequest struct {
	PaymentDate time.Time `json:"payment_date"`
	Notes       *string   `json:"notes,omitempty"`
}

func (h *Handler) MarkPaid(c echo.Context) error {
	var req markPaidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.MarkPaid(c.Request().Context(), c.Param("id"), req.PaymentDate, req.Notes)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
