package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeType classifies a ledger line.
type ChargeType string

const (
	TypeInvestigation ChargeType = "INVESTIGATION"
	TypeProcedure     ChargeType = "PROCEDURE"
	TypeService       ChargeType = "SERVICE"
	TypeOT            ChargeType = "OT"
	TypeManual        ChargeType = "MANUAL"
	TypeBed           ChargeType = "BED"
)

var validTypes = map[ChargeType]bool{
	TypeInvestigation: true,
	TypeProcedure:     true,
	TypeService:       true,
	TypeOT:            true,
	TypeManual:        true,
	TypeBed:           true,
}

// Target names the account a charge posts against: exactly one of an
// outpatient visit or an inpatient admission.
type Target struct {
	VisitID     *string `json:"visit_id,omitempty"`
	AdmissionID *string `json:"admission_id,omitempty"`
}

func VisitTarget(visitID string) Target   { return Target{VisitID: &visitID} }
func AdmissionTarget(ipdID string) Target { return Target{AdmissionID: &ipdID} }

// Validate enforces the exactly-one rule.
func (t Target) Validate() error {
	switch {
	case t.VisitID == nil && t.AdmissionID == nil:
		return fmt.Errorf("either visit_id or admission_id must be provided")
	case t.VisitID != nil && t.AdmissionID != nil:
		return fmt.Errorf("visit_id and admission_id are mutually exclusive")
	}
	return nil
}

// Charge maps to the billing_charges table. TotalAmount is always
// rate times quantity, rounded to two decimals at write time.
type Charge struct {
	ChargeID    string          `db:"charge_id" json:"charge_id"`
	VisitID     *string         `db:"visit_id" json:"visit_id,omitempty"`
	AdmissionID *string         `db:"admission_id" json:"admission_id,omitempty"`
	ChargeType  ChargeType      `db:"charge_type" json:"charge_type"`
	ChargeName  string          `db:"charge_name" json:"charge_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	ChargeDate  time.Time       `db:"charge_date" json:"charge_date"`
	CreatedBy   string          `db:"created_by" json:"created_by"`
}

func (c *Charge) Target() Target {
	return Target{VisitID: c.VisitID, AdmissionID: c.AdmissionID}
}

// Snapshot captures the mutable fields of a charge for the audit trail.
type Snapshot struct {
	ChargeName  string  `json:"charge_name"`
	Rate        string  `json:"rate"`
	Quantity    int     `json:"quantity"`
	TotalAmount string  `json:"total_amount"`
	VisitID     *string `json:"visit_id,omitempty"`
	AdmissionID *string `json:"admission_id,omitempty"`
}

func (c *Charge) Snapshot() Snapshot {
	return Snapshot{
		ChargeName:  c.ChargeName,
		Rate:        c.Rate.StringFixed(2),
		Quantity:    c.Quantity,
		TotalAmount: c.TotalAmount.StringFixed(2),
		VisitID:     c.VisitID,
		AdmissionID: c.AdmissionID,
	}
}
