package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mode is the tender used. Input is accepted case-insensitively and stored
// uppercase.
type Mode string

const (
	ModeCash Mode = "CASH"
	ModeUPI  Mode = "UPI"
	ModeCard Mode = "CARD"
)

var validModes = map[Mode]bool{
	ModeCash: true,
	ModeUPI:  true,
	ModeCard: true,
}

// Type says what the payment settles.
type Type string

const (
	TypeOPDFee        Type = "OPD_FEE"
	TypeIPDAdvance    Type = "IPD_ADVANCE"
	TypeInvestigation Type = "INVESTIGATION"
	TypeProcedure     Type = "PROCEDURE"
	TypeService       Type = "SERVICE"
	TypeOT            Type = "OT"
	TypeDischarge     Type = "DISCHARGE"
	TypeManual        Type = "MANUAL"
)

var validTypes = map[Type]bool{
	TypeOPDFee:        true,
	TypeIPDAdvance:    true,
	TypeInvestigation: true,
	TypeProcedure:     true,
	TypeService:       true,
	TypeOT:            true,
	TypeDischarge:     true,
	TypeManual:        true,
}

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusPending   Status = "PENDING"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Payment maps to the payments table.
type Payment struct {
	PaymentID    string          `db:"payment_id" json:"payment_id"`
	PatientID    string          `db:"patient_id" json:"patient_id"`
	VisitID      *string         `db:"visit_id" json:"visit_id,omitempty"`
	AdmissionID  *string         `db:"admission_id" json:"admission_id,omitempty"`
	Type         Type            `db:"payment_type" json:"payment_type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Mode         Mode            `db:"payment_mode" json:"payment_mode"`
	Status       Status          `db:"payment_status" json:"payment_status"`
	TransactionRef *string       `db:"transaction_reference" json:"transaction_reference,omitempty"`
	Notes        *string         `db:"notes" json:"notes,omitempty"`
	PaymentDate  time.Time       `db:"payment_date" json:"payment_date"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
}

// Balance is the settlement position for a patient, visit, or admission.
// BalanceDue may be negative when advances exceed charges.
type Balance struct {
	PatientID      string          `json:"patient_id"`
	TotalCharges   decimal.Decimal `json:"total_charges"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
	AdvanceBalance decimal.Decimal `json:"advance_balance"`
}
