package ot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/billing"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ipd"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var ErrNotFound = errors.New("ot procedure not found")

type AdmissionGetter interface {
	Get(ctx context.Context, admissionID string) (*ipd.Admission, error)
}

// ChargePoster posts OT charges into the billing ledger.
type ChargePoster interface {
	AddCharges(ctx context.Context, target billing.Target, ct billing.ChargeType, inputs []billing.ChargeInput, actor string) ([]*billing.Charge, error)
	ListByTargetAndType(ctx context.Context, target billing.Target, ct billing.ChargeType) ([]*billing.Charge, error)
}

type Service struct {
	repo       Repository
	admissions AdmissionGetter
	billing    ChargePoster
	ids        idgen.IDSource
}

func NewService(repo Repository, admissions AdmissionGetter, billing ChargePoster, ids idgen.IDSource) *Service {
	return &Service{repo: repo, admissions: admissions, billing: billing, ids: ids}
}

// CreateRequest is the input for a new procedure record.
type CreateRequest struct {
	AdmissionID     string    `json:"admission_id"`
	OperationName   string    `json:"operation_name"`
	OperationDate   time.Time `json:"operation_date"`
	DurationMinutes int       `json:"duration_minutes"`
	SurgeonName     string    `json:"surgeon_name"`
	AnesthesiaType  *string   `json:"anesthesia_type,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest, actor string) (*Procedure, error) {
	if strings.TrimSpace(req.OperationName) == "" {
		return nil, fmt.Errorf("operation name is required")
	}
	if strings.TrimSpace(req.SurgeonName) == "" {
		return nil, fmt.Errorf("surgeon name is required")
	}
	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	if actor == "" {
		return nil, fmt.Errorf("actor is required")
	}

	if _, err := s.admissions.Get(ctx, req.AdmissionID); err != nil {
		return nil, fmt.Errorf("admission %s: %w", req.AdmissionID, err)
	}

	p := &Procedure{
		OTID:            s.ids.NextID("OT"),
		AdmissionID:     req.AdmissionID,
		OperationName:   strings.TrimSpace(req.OperationName),
		OperationDate:   req.OperationDate,
		DurationMinutes: req.DurationMinutes,
		SurgeonName:     strings.TrimSpace(req.SurgeonName),
		AnesthesiaType:  req.AnesthesiaType,
		Notes:           req.Notes,
		CreatedBy:       actor,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ChargeRequest prices an operation. Zero components are skipped; each
// positive one becomes its own OT line in the ledger.
type ChargeRequest struct {
	SurgeonCharge    decimal.Decimal  `json:"surgeon_charge"`
	AnesthesiaCharge decimal.Decimal  `json:"anesthesia_charge"`
	FacilityCharge   decimal.Decimal  `json:"facility_charge"`
	AssistantCharge  *decimal.Decimal `json:"assistant_charge,omitempty"`
}

// AddCharges fans the priced components of a procedure out into the billing
// ledger against the procedure's admission.
func (s *Service) AddCharges(ctx context.Context, otID string, req ChargeRequest, actor string) ([]*billing.Charge, error) {
	p, err := s.repo.GetByID(ctx, otID)
	if err != nil {
		return nil, err
	}

	components := []struct {
		label  string
		amount decimal.Decimal
		set    bool
	}{
		{"Surgeon", req.SurgeonCharge, true},
		{"Anesthesia", req.AnesthesiaCharge, true},
		{"Facility", req.FacilityCharge, true},
		{"Assistant", decimal.Zero, false},
	}
	if req.AssistantCharge != nil {
		components[3].amount = *req.AssistantCharge
		components[3].set = true
	}

	var inputs []billing.ChargeInput
	for _, comp := range components {
		if !comp.set {
			continue
		}
		if comp.amount.IsNegative() {
			return nil, fmt.Errorf("%s charge cannot be negative", strings.ToLower(comp.label))
		}
		if comp.amount.IsZero() {
			continue
		}
		inputs = append(inputs, billing.ChargeInput{
			Name:     fmt.Sprintf("OT %s Charge - %s", comp.label, p.OperationName),
			Rate:     comp.amount,
			Quantity: 1,
		})
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("at least one charge component must be positive")
	}

	return s.billing.AddCharges(ctx, billing.AdmissionTarget(p.AdmissionID), billing.TypeOT, inputs, actor)
}

func (s *Service) Get(ctx context.Context, otID string) (*Procedure, error) {
	return s.repo.GetByID(ctx, otID)
}

func (s *Service) ListByAdmission(ctx context.Context, admissionID string) ([]*Procedure, error) {
	return s.repo.ListByAdmission(ctx, admissionID)
}

// ListCharges returns the OT lines already posted against an admission.
func (s *Service) ListCharges(ctx context.Context, admissionID string) ([]*billing.Charge, error) {
	return s.billing.ListByTargetAndType(ctx, billing.AdmissionTarget(admissionID), billing.TypeOT)
}
