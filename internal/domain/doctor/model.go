package doctor

import (
	"time"

	"github.com/shopspring/decimal"
)

// Doctor maps to the doctors table. The two fees are the consultation rates
// snapshotted onto visits at creation time.
type Doctor struct {
	DoctorID      string          `db:"doctor_id" json:"doctor_id"`
	Name          string          `db:"name" json:"name"`
	Specialization *string        `db:"specialization" json:"specialization,omitempty"`
	NewPatientFee decimal.Decimal `db:"new_patient_fee" json:"new_patient_fee"`
	FollowupFee   decimal.Decimal `db:"followup_fee" json:"followup_fee"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
