package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Scope narrows sums and lists to one ledger: a single visit, a single
// admission, or everything under a patient.
type Scope struct {
	PatientID   *string
	VisitID     *string
	AdmissionID *string
}

func PatientScope(patientID string) Scope { return Scope{PatientID: &patientID} }
func VisitScope(visitID string) Scope     { return Scope{VisitID: &visitID} }
func AdmissionScope(ipdID string) Scope   { return Scope{AdmissionID: &ipdID} }

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, paymentID string) (*Payment, error)
	ListByScope(ctx context.Context, scope Scope) ([]*Payment, error)
	SumByScope(ctx context.Context, scope Scope) (decimal.Decimal, error)
	// SumAdvances totals IPD_ADVANCE payments against one admission.
	SumAdvances(ctx context.Context, admissionID string) (decimal.Decimal, error)
	// DailyCollection totals completed payments dated on the given day.
	DailyCollection(ctx context.Context, day time.Time) (decimal.Decimal, error)
}
