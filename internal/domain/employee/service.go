package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var (
	ErrNotFound         = errors.New("employee not found")
	ErrPaymentNotFound  = errors.New("salary payment not found")
	ErrDuplicatePayment = errors.New("salary payment already exists for this period")
	ErrInactive         = errors.New("employee is inactive")
)

type Service struct {
	repo Repository
	ids  idgen.IDSource
	now  func() time.Time
}

func NewService(repo Repository, ids idgen.IDSource) *Service {
	return &Service{repo: repo, ids: ids, now: time.Now}
}

func (s *Service) Create(ctx context.Context, e *Employee) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(e.Post) == "" {
		return fmt.Errorf("post is required")
	}
	if !validEmploymentStatuses[e.EmploymentStatus] {
		return fmt.Errorf("invalid employment status: %s", e.EmploymentStatus)
	}
	if e.DutyHours <= 0 {
		return fmt.Errorf("duty hours must be positive")
	}
	if e.MonthlySalary.IsNegative() {
		return fmt.Errorf("monthly salary must not be negative")
	}
	if e.JoiningDate.IsZero() {
		return fmt.Errorf("joining date is required")
	}

	e.EmployeeID = s.ids.NextID("EMP")
	e.Name = strings.TrimSpace(e.Name)
	e.Post = strings.TrimSpace(e.Post)
	e.MonthlySalary = e.MonthlySalary.RoundBank(2)
	e.Status = StatusActive
	return s.repo.Create(ctx, e)
}

func (s *Service) Get(ctx context.Context, employeeID string) (*Employee, error) {
	return s.repo.GetByID(ctx, employeeID)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Employee, int, error) {
	if status != "" && status != StatusActive && status != StatusInactive {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

// UpdateRequest carries a partial update. Nil fields keep their current value.
type UpdateRequest struct {
	Name             *string           `json:"name,omitempty"`
	Post             *string           `json:"post,omitempty"`
	Qualification    *string           `json:"qualification,omitempty"`
	EmploymentStatus *EmploymentStatus `json:"employment_status,omitempty"`
	DutyHours        *int              `json:"duty_hours,omitempty"`
	MonthlySalary    *decimal.Decimal  `json:"monthly_salary,omitempty"`
	Status           *Status           `json:"status,omitempty"`
}

func (s *Service) Update(ctx context.Context, employeeID string, req UpdateRequest) (*Employee, error) {
	e, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("name must not be empty")
		}
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Post != nil {
		if strings.TrimSpace(*req.Post) == "" {
			return nil, fmt.Errorf("post must not be empty")
		}
		e.Post = strings.TrimSpace(*req.Post)
	}
	if req.Qualification != nil {
		e.Qualification = req.Qualification
	}
	if req.EmploymentStatus != nil {
		if !validEmploymentStatuses[*req.EmploymentStatus] {
			return nil, fmt.Errorf("invalid employment status: %s", *req.EmploymentStatus)
		}
		e.EmploymentStatus = *req.EmploymentStatus
	}
	if req.DutyHours != nil {
		if *req.DutyHours <= 0 {
			return nil, fmt.Errorf("duty hours must be positive")
		}
		e.DutyHours = *req.DutyHours
	}
	if req.MonthlySalary != nil {
		if req.MonthlySalary.IsNegative() {
			return nil, fmt.Errorf("monthly salary must not be negative")
		}
		e.MonthlySalary = req.MonthlySalary.RoundBank(2)
	}
	if req.Status != nil {
		if *req.Status != StatusActive && *req.Status != StatusInactive {
			return nil, fmt.Errorf("invalid status: %s", *req.Status)
		}
		e.Status = *req.Status
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Deactivate retires an employee. Records are never hard deleted.
func (s *Service) Deactivate(ctx context.Context, employeeID string) error {
	e, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	e.Status = StatusInactive
	return s.repo.Update(ctx, e)
}

func validPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return fmt.Errorf("year must be between 2000 and 2100")
	}
	return nil
}

// SalarySlip computes a payslip for an active employee. Gross equals the base
// monthly salary; deductions are not modelled yet.
func (s *Service) SalarySlip(ctx context.Context, employeeID string, month, year int) (*SalarySlip, error) {
	if err := validPeriod(month, year); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusActive {
		return nil, ErrInactive
	}

	basic := e.MonthlySalary
	deductions := decimal.Zero
	return &SalarySlip{
		EmployeeID:       e.EmployeeID,
		EmployeeName:     e.Name,
		Post:             e.Post,
		Month:            month,
		Year:             year,
		JoiningDate:      e.JoiningDate,
		EmploymentStatus: e.EmploymentStatus,
		DutyHours:        e.DutyHours,
		BasicSalary:      basic,
		GrossSalary:      basic,
		Deductions:       deductions,
		NetSalary:        basic.Sub(deductions),
		GeneratedAt:      s.now(),
	}, nil
}

// PaymentInput is the caller-supplied part of a salary payment.
type PaymentInput struct {
	EmployeeID  string          `json:"employee_id"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
}

// RecordPayment creates a pending salary payment for one employee and period.
// A second payment for the same period is rejected.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*SalaryPayment, error) {
	if err := validPeriod(in.Month, in.Year); err != nil {
		return nil, err
	}
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	if _, err := s.repo.GetByID(ctx, in.EmployeeID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetPaymentForPeriod(ctx, in.EmployeeID, in.Month, in.Year)
	if err != nil && !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePayment
	}

	p := &SalaryPayment{
		PaymentID:   s.ids.NextID("SAL"),
		EmployeeID:  in.EmployeeID,
		Month:       in.Month,
		Year:        in.Year,
		Amount:      in.Amount.RoundBank(2),
		PaymentDate: in.PaymentDate,
		Status:      SalaryPending,
		Notes:       in.Notes,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, paymentID string) (*SalaryPayment, error) {
	return s.repo.GetPayment(ctx, paymentID)
}

func (s *Service) ListPayments(ctx context.Context, f PaymentFilter, limit, offset int) ([]*SalaryPayment, int, error) {
	if f.Month != 0 && (f.Month < 1 || f.Month > 12) {
		return nil, 0, fmt.Errorf("month must be between 1 and 12")
	}
	if f.Status != "" && f.Status != SalaryPending && f.Status != SalaryPaid {
		return nil, 0, fmt.Errorf("invalid payment status: %s", f.Status)
	}
	return s.repo.ListPayments(ctx, f, limit, offset)
}

// MarkPaid settles a pending payment on the given date.
func (s *Service) MarkPaid(ctx context.Context, paymentID string, paymentDate time.Time, notes *string) (*SalaryPayment, error) {
	if paymentDate.IsZero() {
		return nil, fmt.Errorf("payment date is required")
	}

	p, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	p.Status = SalaryPaid
	p.PaymentDate = &paymentDate
	if notes != nil {
		p.Notes = notes
	}
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
