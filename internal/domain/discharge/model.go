package discharge

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillLine is one priced row on the discharge statement.
type BillLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Total    decimal.Decimal `json:"total"`
}

// PaymentLine is one settlement row.
type PaymentLine struct {
	PaymentID string          `json:"payment_id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode"`
	Type      string          `json:"type"`
	Reference *string         `json:"reference,omitempty"`
}

// PatientInfo is the patient header on the statement.
type PatientInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Age     int     `json:"age"`
	Gender  string  `json:"gender"`
	Mobile  string  `json:"mobile"`
	Address *string `json:"address,omitempty"`
}

// StayInfo summarizes the admission period. Days counts both the admission
// and discharge day, minimum one.
type StayInfo struct {
	AdmissionDate time.Time  `json:"admission_date"`
	DischargeDate *time.Time `json:"discharge_date,omitempty"`
	Days          int        `json:"days"`
}

// Summary is the money position at the bottom of the statement.
type Summary struct {
	TotalCharges decimal.Decimal `json:"total_charges"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	AdvancePaid  decimal.Decimal `json:"advance_paid"`
	BalanceDue   decimal.Decimal `json:"balance_due"`
}

// Bill is the full discharge statement. ChargesByType groups ledger lines by
// charge type, plus the synthetic FILE_CHARGE and OPD_FEE groups sourced from
// the admission and its originating visit.
type Bill struct {
	AdmissionID   string                `json:"admission_id"`
	Patient       PatientInfo           `json:"patient"`
	Stay          StayInfo              `json:"stay"`
	ChargesByType map[string][]BillLine `json:"charges_by_type"`
	Payments      []PaymentLine         `json:"payments"`
	Summary       Summary               `json:"summary"`
	GeneratedAt   time.Time             `json:"generated_at"`
}
