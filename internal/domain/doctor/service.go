package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/db"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
)

var ErrNotFound = errors.New("doctor not found")

// RateAuditLogger records privileged fee changes. Injected so the registry
// does not depend on the audit trail's internals.
type RateAuditLogger interface {
	LogRateChange(ctx context.Context, actor, table, recordID string, oldRate, newRate decimal.Decimal) error
}

type Service struct {
	repo  Repository
	ids   idgen.IDSource
	audit RateAuditLogger
	tx    db.TxRunner
}

func NewService(repo Repository, ids idgen.IDSource, audit RateAuditLogger, tx db.TxRunner) *Service {
	return &Service{repo: repo, ids: ids, audit: audit, tx: tx}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if d.NewPatientFee.IsNegative() || d.FollowupFee.IsNegative() {
		return fmt.Errorf("consultation fees must not be negative")
	}

	d.DoctorID = s.ids.NextID("D")
	d.NewPatientFee = d.NewPatientFee.RoundBank(2)
	d.FollowupFee = d.FollowupFee.RoundBank(2)
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, doctorID string) (*Doctor, error) {
	return s.repo.GetByID(ctx, doctorID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateFees changes a doctor's consultation rates. Each changed rate is
// written to the audit trail with its before and after value; the row update
// and its audit entries commit or roll back together.
func (s *Service) UpdateFees(ctx context.Context, doctorID string, newPatientFee, followupFee decimal.Decimal, actor string) (*Doctor, error) {
	if newPatientFee.IsNegative() || followupFee.IsNegative() {
		return nil, fmt.Errorf("consultation fees must not be negative")
	}
	if actor == "" {
		return nil, fmt.Errorf("actor is required for fee changes")
	}

	d, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	oldNew := d.NewPatientFee
	oldFollowup := d.FollowupFee

	d.NewPatientFee = newPatientFee.RoundBank(2)
	d.FollowupFee = followupFee.RoundBank(2)

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, d); err != nil {
			return err
		}
		if !oldNew.Equal(d.NewPatientFee) {
			if err := s.audit.LogRateChange(ctx, actor, "doctors", d.DoctorID, oldNew, d.NewPatientFee); err != nil {
				return fmt.Errorf("audit fee change: %w", err)
			}
		}
		if !oldFollowup.Equal(d.FollowupFee) {
			if err := s.audit.LogRateChange(ctx, actor, "doctors", d.DoctorID, oldFollowup, d.FollowupFee); err != nil {
				return fmt.Errorf("audit fee change: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}
