package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository persists ledger charges. Deletion exists for correcting
// mistaken entries; routine adjustments go through Update so the audit
// trail sees them.
type Repository interface {
	Create(ctx context.Context, c *Charge) error
	GetByID(ctx context.Context, chargeID string) (*Charge, error)
	Update(ctx context.Context, c *Charge) error
	Delete(ctx context.Context, chargeID string) error
	ListByTarget(ctx context.Context, target Target) ([]*Charge, error)
	ListByTargetAndType(ctx context.Context, target Target, ct ChargeType) ([]*Charge, error)
	SumByTarget(ctx context.Context, target Target) (decimal.Decimal, error)
	// SumByPatient totals charges across every visit and admission of one
	// patient.
	SumByPatient(ctx context.Context, patientID string) (decimal.Decimal, error)
}
