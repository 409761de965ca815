package visit

import (
	"context"
	"time"
)

// Repository persists visits.
type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, visitID string) (*Visit, error)
	// MaxSerial returns the highest serial number issued for the doctor on
	// the given calendar day, 0 when none.
	MaxSerial(ctx context.Context, doctorID string, day time.Time) (int, error)
	UpdateStatus(ctx context.Context, visitID string, status Status) error
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Visit, int, error)
	ListByDoctorAndDate(ctx context.Context, doctorID string, day time.Time) ([]*Visit, error)
}
