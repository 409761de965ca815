package bed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/db"
)

var (
	ErrNotFound          = errors.New("bed not found")
	ErrInvalidTransition = errors.New("invalid bed status transition")
	ErrDuplicateNumber   = errors.New("bed number already exists")
)

// RateAuditLogger records privileged per-day rate changes.
type RateAuditLogger interface {
	LogRateChange(ctx context.Context, actor, table, recordID string, oldRate, newRate decimal.Decimal) error
}

type Service struct {
	repo  Repository
	audit RateAuditLogger
	tx    db.TxRunner
}

func NewService(repo Repository, audit RateAuditLogger, tx db.TxRunner) *Service {
	return &Service{repo: repo, audit: audit, tx: tx}
}

func (s *Service) Create(ctx context.Context, b *Bed) error {
	if strings.TrimSpace(b.BedNumber) == "" {
		return fmt.Errorf("bed number is required")
	}
	if !validWardTypes[b.WardType] {
		return fmt.Errorf("invalid ward type: %s", b.WardType)
	}
	if b.PerDayCharge.IsNegative() {
		return fmt.Errorf("per-day charge must not be negative")
	}

	existing, err := s.repo.GetByNumber(ctx, b.BedNumber)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrDuplicateNumber
	}

	b.PerDayCharge = b.PerDayCharge.RoundBank(2)
	b.Status = StatusAvailable
	return s.repo.Create(ctx, b)
}

func (s *Service) Get(ctx context.Context, id int) (*Bed, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, ward WardType, status Status, limit, offset int) ([]*Bed, int, error) {
	if ward != "" && !validWardTypes[ward] {
		return nil, 0, fmt.Errorf("invalid ward type: %s", ward)
	}
	return s.repo.List(ctx, ward, status, limit, offset)
}

func (s *Service) Occupancy(ctx context.Context) ([]*OccupancyStats, error) {
	return s.repo.Occupancy(ctx)
}

// SetMaintenance takes an available bed out of service, or returns one to
// service. Occupied beds cannot change maintenance state.
func (s *Service) SetMaintenance(ctx context.Context, id int, underMaintenance bool) (*Bed, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target := StatusMaintenance
	if !underMaintenance {
		target = StatusAvailable
	}
	if b.Status == target {
		return b, nil
	}
	if !CanTransition(b.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, target)
	}

	ok, err := s.repo.CompareAndSetStatus(ctx, id, b.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: bed %s changed concurrently", ErrInvalidTransition, b.BedNumber)
	}

	b.Status = target
	return b, nil
}

// UpdateRate changes a bed's per-day charge and audits the change. The row
// update and its audit entry commit or roll back together.
func (s *Service) UpdateRate(ctx context.Context, id int, rate decimal.Decimal, actor string) (*Bed, error) {
	if rate.IsNegative() {
		return nil, fmt.Errorf("per-day charge must not be negative")
	}
	if actor == "" {
		return nil, fmt.Errorf("actor is required for rate changes")
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := b.PerDayCharge
	b.PerDayCharge = rate.RoundBank(2)

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		if !old.Equal(b.PerDayCharge) {
			if err := s.audit.LogRateChange(ctx, actor, "beds", b.BedNumber, old, b.PerDayCharge); err != nil {
				return fmt.Errorf("audit rate change: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
