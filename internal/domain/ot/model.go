package ot

import "time"

// Procedure maps to the ot_procedures table. Pricing does not live here; OT
// charges go into the billing ledger with charge type OT, linked back by the
// operation name.
type Procedure struct {
	OTID            string    `db:"ot_id" json:"ot_id"`
	AdmissionID     string    `db:"admission_id" json:"admission_id"`
	OperationName   string    `db:"operation_name" json:"operation_name"`
	OperationDate   time.Time `db:"operation_date" json:"operation_date"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	SurgeonName     string    `db:"surgeon_name" json:"surgeon_name"`
	AnesthesiaType  *string   `db:"anesthesia_type" json:"anesthesia_type,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	CreatedBy       string    `db:"created_by" json:"created_by"`
}
