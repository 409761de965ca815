package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/db"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var ErrNotFound = errors.New("charge not found")

// TargetChecker verifies the referenced visit or admission exists before a
// charge posts against it. The composition root wires the visit and ipd
// services in.
type TargetChecker interface {
	CheckTarget(ctx context.Context, target Target) error
}

// AuditLogger records manual-charge activity. Charges of other types post
// without an audit entry.
type AuditLogger interface {
	LogManualChargeAdd(ctx context.Context, actor, chargeID string, created Snapshot) error
	LogManualChargeEdit(ctx context.Context, actor, chargeID string, before, after Snapshot) error
}

type Service struct {
	repo    Repository
	targets TargetChecker
	audit   AuditLogger
	ids     idgen.IDSource
	tx      db.TxRunner
	now     func() time.Time
}

func NewService(repo Repository, targets TargetChecker, audit AuditLogger, ids idgen.IDSource, tx db.TxRunner) *Service {
	return &Service{
		repo:    repo,
		targets: targets,
		audit:   audit,
		ids:     ids,
		tx:      tx,
		now:     time.Now,
	}
}

// ChargeInput is one ledger line to post.
type ChargeInput struct {
	Name     string          `json:"name"`
	Rate     decimal.Decimal `json:"rate"`
	Quantity int             `json:"quantity"`
	// StartTime/EndTime derive the quantity for timed services: hours
	// rounded up, minimum one. When set they override Quantity.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

func (in *ChargeInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("charge name is required")
	}
	if in.Rate.IsNegative() {
		return fmt.Errorf("rate cannot be negative")
	}
	if in.StartTime != nil && in.EndTime != nil {
		if !in.EndTime.After(*in.StartTime) {
			return fmt.Errorf("end time must be after start time")
		}
	} else if in.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// quantity resolves the billed unit count, deriving it from the time window
// when one is given.
func (in *ChargeInput) quantity() int {
	if in.StartTime != nil && in.EndTime != nil {
		hours := in.EndTime.Sub(*in.StartTime).Hours()
		q := int(math.Ceil(hours))
		if q < 1 {
			q = 1
		}
		return q
	}
	return in.Quantity
}

// AddCharge posts a single charge against the target. Manual charges get an
// audit entry in the same transaction.
func (s *Service) AddCharge(ctx context.Context, target Target, ct ChargeType, in ChargeInput, actor string) (*Charge, error) {
	charges, err := s.AddCharges(ctx, target, ct, []ChargeInput{in}, actor)
	if err != nil {
		return nil, err
	}
	return charges[0], nil
}

// AddCharges posts a batch of charges of one type against the target. The
// whole batch commits or none of it does.
func (s *Service) AddCharges(ctx context.Context, target Target, ct ChargeType, inputs []ChargeInput, actor string) ([]*Charge, error) {
	if !validTypes[ct] {
		return nil, fmt.Errorf("invalid charge type %q", ct)
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no charges provided")
	}
	if actor == "" {
		return nil, fmt.Errorf("actor is required")
	}
	for i := range inputs {
		if err := inputs[i].validate(); err != nil {
			return nil, fmt.Errorf("charge %d: %w", i+1, err)
		}
	}
	if err := s.targets.CheckTarget(ctx, target); err != nil {
		return nil, err
	}

	when := s.now()
	charges := make([]*Charge, 0, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		rate := in.Rate.RoundBank(2)
		qty := in.quantity()
		charges = append(charges, &Charge{
			ChargeID:    s.ids.NextID("CHG"),
			VisitID:     target.VisitID,
			AdmissionID: target.AdmissionID,
			ChargeType:  ct,
			ChargeName:  strings.TrimSpace(in.Name),
			Quantity:    qty,
			Rate:        rate,
			TotalAmount: rate.Mul(decimal.NewFromInt(int64(qty))).RoundBank(2),
			ChargeDate:  when,
			CreatedBy:   actor,
		})
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, c := range charges {
			if err := s.repo.Create(ctx, c); err != nil {
				return err
			}
			if ct == TypeManual {
				if err := s.audit.LogManualChargeAdd(ctx, actor, c.ChargeID, c.Snapshot()); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return charges, nil
}

// ChargeUpdate carries the fields UpdateCharge may change. Nil means keep.
type ChargeUpdate struct {
	Name     *string          `json:"name,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
}

// UpdateCharge edits a ledger line and recomputes its total. Edits to manual
// charges are audited with before and after snapshots.
func (s *Service) UpdateCharge(ctx context.Context, chargeID string, upd ChargeUpdate, actor string) (*Charge, error) {
	if upd.Rate != nil && upd.Rate.IsNegative() {
		return nil, fmt.Errorf("rate cannot be negative")
	}
	if upd.Quantity != nil && *upd.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("charge name cannot be empty")
	}
	if actor == "" {
		return nil, fmt.Errorf("actor is required")
	}

	var c *Charge
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetByID(ctx, chargeID)
		if err != nil {
			return err
		}

		before := c.Snapshot()
		if upd.Name != nil {
			c.ChargeName = strings.TrimSpace(*upd.Name)
		}
		if upd.Rate != nil {
			c.Rate = upd.Rate.RoundBank(2)
		}
		if upd.Quantity != nil {
			c.Quantity = *upd.Quantity
		}
		c.TotalAmount = c.Rate.Mul(decimal.NewFromInt(int64(c.Quantity))).RoundBank(2)

		if err := s.repo.Update(ctx, c); err != nil {
			return err
		}
		if c.ChargeType == TypeManual {
			return s.audit.LogManualChargeEdit(ctx, actor, c.ChargeID, before, c.Snapshot())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, chargeID string) (*Charge, error) {
	return s.repo.GetByID(ctx, chargeID)
}

func (s *Service) Delete(ctx context.Context, chargeID string) error {
	return s.repo.Delete(ctx, chargeID)
}

func (s *Service) ListByTarget(ctx context.Context, target Target) ([]*Charge, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListByTarget(ctx, target)
}

func (s *Service) ListByTargetAndType(ctx context.Context, target Target, ct ChargeType) ([]*Charge, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if !validTypes[ct] {
		return nil, fmt.Errorf("invalid charge type %q", ct)
	}
	return s.repo.ListByTargetAndType(ctx, target, ct)
}

// TotalCharges sums the ledger for one target, zero when empty.
func (s *Service) TotalCharges(ctx context.Context, target Target) (decimal.Decimal, error) {
	if err := target.Validate(); err != nil {
		return decimal.Zero, err
	}
	return s.repo.SumByTarget(ctx, target)
}

// TotalForPatient sums the ledger across every visit and admission of one
// patient.
func (s *Service) TotalForPatient(ctx context.Context, patientID string) (decimal.Decimal, error) {
	return s.repo.SumByPatient(ctx, patientID)
}
