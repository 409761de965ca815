package ipd

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the admission lifecycle state.
type Status string

const (
	StatusAdmitted    Status = "ADMITTED"
	StatusDischarged  Status = "DISCHARGED"
	StatusTransferred Status = "TRANSFERRED"
)

// Admission maps to the admissions table. An admission links a patient to
// exactly one bed at a time; the bed's status must read OCCUPIED while the
// admission is ADMITTED. FileCharge is the one-time admission fee, billed on
// the discharge statement rather than as a ledger charge.
type Admission struct {
	AdmissionID   string          `db:"admission_id" json:"admission_id"`
	PatientID     string          `db:"patient_id" json:"patient_id"`
	VisitID       *string         `db:"visit_id" json:"visit_id,omitempty"`
	BedID         int             `db:"bed_id" json:"bed_id"`
	AdmissionDate time.Time       `db:"admission_date" json:"admission_date"`
	DischargeDate *time.Time      `db:"discharge_date" json:"discharge_date,omitempty"`
	FileCharge    decimal.Decimal `db:"file_charge" json:"file_charge"`
	Status        Status          `db:"status" json:"status"`
	Diagnosis     *string         `db:"diagnosis" json:"diagnosis,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// BedChargeSummary is the priced bed usage of an admission.
type BedChargeSummary struct {
	AdmissionID  string          `json:"admission_id"`
	BedID        int             `json:"bed_id"`
	Days         int             `json:"days"`
	PerDayCharge decimal.Decimal `json:"per_day_charge"`
	Total        decimal.Decimal `json:"total"`
}
