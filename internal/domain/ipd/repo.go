package ipd

import (
	"context"
	"time"
)

// Repository persists admissions. Status and bed-reference writes only happen
// through the service's transactional operations.
type Repository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, admissionID string) (*Admission, error)
	// SetDischarged stamps the discharge and flips the status in one write,
	// guarded on the current status being ADMITTED.
	SetDischarged(ctx context.Context, admissionID string, at time.Time) (bool, error)
	// SetBed moves the admission to another bed, guarded on ADMITTED.
	SetBed(ctx context.Context, admissionID string, bedID int) (bool, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Admission, int, error)
	ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error)
}
