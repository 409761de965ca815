package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/billing"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ipd"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/visit"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var ErrNotFound = errors.New("payment not found")

type PatientGetter interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
}

type VisitGetter interface {
	Get(ctx context.Context, visitID string) (*visit.Visit, error)
}

type AdmissionGetter interface {
	Get(ctx context.Context, admissionID string) (*ipd.Admission, error)
}

// ChargeSource reads ledger totals from billing.
type ChargeSource interface {
	TotalCharges(ctx context.Context, target billing.Target) (decimal.Decimal, error)
	TotalForPatient(ctx context.Context, patientID string) (decimal.Decimal, error)
}

type Service struct {
	repo       Repository
	patients   PatientGetter
	visits     VisitGetter
	admissions AdmissionGetter
	charges    ChargeSource
	ids        idgen.IDSource
	now        func() time.Time
}

func NewService(repo Repository, patients PatientGetter, visits VisitGetter, admissions AdmissionGetter, charges ChargeSource, ids idgen.IDSource) *Service {
	return &Service{
		repo:       repo,
		patients:   patients,
		visits:     visits,
		admissions: admissions,
		charges:    charges,
		ids:        ids,
		now:        time.Now,
	}
}

// RecordRequest is the input for a new payment.
type RecordRequest struct {
	PatientID      string          `json:"patient_id"`
	Amount         decimal.Decimal `json:"amount"`
	Mode           string          `json:"payment_mode"`
	Type           Type            `json:"payment_type"`
	VisitID        *string         `json:"visit_id,omitempty"`
	AdmissionID    *string         `json:"admission_id,omitempty"`
	TransactionRef *string         `json:"transaction_reference,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}

// Record validates and stores a payment. The mode is normalized to uppercase
// and the amount to two decimals; status is COMPLETED on creation.
func (s *Service) Record(ctx context.Context, req RecordRequest, actor string) (*Payment, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive")
	}
	mode := Mode(strings.ToUpper(strings.TrimSpace(req.Mode)))
	if !validModes[mode] {
		return nil, fmt.Errorf("payment mode must be one of CASH, UPI, CARD")
	}
	if !validTypes[req.Type] {
		return nil, fmt.Errorf("invalid payment type %q", req.Type)
	}
	if actor == "" {
		return nil, fmt.Errorf("actor is required")
	}

	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, fmt.Errorf("patient %s: %w", req.PatientID, err)
	}
	if req.VisitID != nil {
		if _, err := s.visits.Get(ctx, *req.VisitID); err != nil {
			return nil, fmt.Errorf("visit %s: %w", *req.VisitID, err)
		}
	}
	if req.AdmissionID != nil {
		if _, err := s.admissions.Get(ctx, *req.AdmissionID); err != nil {
			return nil, fmt.Errorf("admission %s: %w", *req.AdmissionID, err)
		}
	}

	p := &Payment{
		PaymentID:      s.ids.NextID("PAY"),
		PatientID:      req.PatientID,
		VisitID:        req.VisitID,
		AdmissionID:    req.AdmissionID,
		Type:           req.Type,
		Amount:         req.Amount.RoundBank(2),
		Mode:           mode,
		Status:         StatusCompleted,
		TransactionRef: req.TransactionRef,
		Notes:          req.Notes,
		PaymentDate:    s.now(),
		CreatedBy:      actor,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordAdvance posts an IPD_ADVANCE against an admission, resolving the
// patient from the admission itself.
func (s *Service) RecordAdvance(ctx context.Context, admissionID string, amount decimal.Decimal, mode string, txnRef, notes *string, actor string) (*Payment, error) {
	a, err := s.admissions.Get(ctx, admissionID)
	if err != nil {
		return nil, fmt.Errorf("admission %s: %w", admissionID, err)
	}

	return s.Record(ctx, RecordRequest{
		PatientID:      a.PatientID,
		Amount:         amount,
		Mode:           mode,
		Type:           TypeIPDAdvance,
		AdmissionID:    &admissionID,
		TransactionRef: txnRef,
		Notes:          notes,
	}, actor)
}

func (s *Service) Get(ctx context.Context, paymentID string) (*Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

func (s *Service) List(ctx context.Context, scope Scope) ([]*Payment, error) {
	if scope.PatientID == nil && scope.VisitID == nil && scope.AdmissionID == nil {
		return nil, fmt.Errorf("must provide patient_id, visit_id, or admission_id")
	}
	return s.repo.ListByScope(ctx, scope)
}

// CalculateBalance computes the settlement position. When scoped to a visit
// the visit's OPD fee joins the charge side; when scoped to an admission the
// admission's file charge does, and advances are reported separately.
// Unscoped, it covers everything under the patient. BalanceDue goes negative
// when payments exceed charges.
func (s *Service) CalculateBalance(ctx context.Context, patientID string, visitID, admissionID *string) (*Balance, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, err)
	}

	var totalCharges decimal.Decimal
	var err error
	switch {
	case visitID != nil:
		totalCharges, err = s.charges.TotalCharges(ctx, billing.VisitTarget(*visitID))
		if err != nil {
			return nil, err
		}
		v, err := s.visits.Get(ctx, *visitID)
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", *visitID, err)
		}
		totalCharges = totalCharges.Add(v.OPDFee)
	case admissionID != nil:
		totalCharges, err = s.charges.TotalCharges(ctx, billing.AdmissionTarget(*admissionID))
		if err != nil {
			return nil, err
		}
		a, err := s.admissions.Get(ctx, *admissionID)
		if err != nil {
			return nil, fmt.Errorf("admission %s: %w", *admissionID, err)
		}
		totalCharges = totalCharges.Add(a.FileCharge)
	default:
		totalCharges, err = s.charges.TotalForPatient(ctx, patientID)
		if err != nil {
			return nil, err
		}
	}

	var scope Scope
	switch {
	case visitID != nil:
		scope = VisitScope(*visitID)
	case admissionID != nil:
		scope = AdmissionScope(*admissionID)
	default:
		scope = PatientScope(patientID)
	}
	totalPaid, err := s.repo.SumByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	advanceBalance := decimal.Zero
	if admissionID != nil {
		advanceBalance, err = s.repo.SumAdvances(ctx, *admissionID)
		if err != nil {
			return nil, err
		}
	}

	return &Balance{
		PatientID:      patientID,
		TotalCharges:   totalCharges,
		TotalPaid:      totalPaid,
		BalanceDue:     totalCharges.Sub(totalPaid),
		AdvanceBalance: advanceBalance,
	}, nil
}

// DailyCollection totals completed payments for the day.
func (s *Service) DailyCollection(ctx context.Context, day *time.Time) (decimal.Decimal, error) {
	when := s.now()
	if day != nil {
		when = *day
	}
	return s.repo.DailyCollection(ctx, when)
}
