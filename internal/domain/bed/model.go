package bed

import (
	"time"

	"github.com/shopspring/decimal"
)

// WardType is the ward category a bed belongs to.
type WardType string

const (
	WardGeneral     WardType = "GENERAL"
	WardSemiPrivate WardType = "SEMI_PRIVATE"
	WardPrivate     WardType = "PRIVATE"
)

var validWardTypes = map[WardType]bool{
	WardGeneral: true, WardSemiPrivate: true, WardPrivate: true,
}

// Status is the bed lifecycle state. It is the single source of truth for
// allocation: a bed is assignable if and only if its status is AVAILABLE.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusOccupied    Status = "OCCUPIED"
	StatusMaintenance Status = "MAINTENANCE"
)

// validTransitions is the exhaustive bed status transition table. Occupied
// beds cannot go straight to maintenance; they must be vacated first.
var validTransitions = map[Status][]Status{
	StatusAvailable:   {StatusOccupied, StatusMaintenance},
	StatusOccupied:    {StatusAvailable},
	StatusMaintenance: {StatusAvailable},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Bed maps to the beds table. BedNumber is unique.
type Bed struct {
	ID           int             `db:"id" json:"id"`
	BedNumber    string          `db:"bed_number" json:"bed_number"`
	WardType     WardType        `db:"ward_type" json:"ward_type"`
	PerDayCharge decimal.Decimal `db:"per_day_charge" json:"per_day_charge"`
	Status       Status          `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// OccupancyStats summarizes bed usage for one ward.
type OccupancyStats struct {
	WardType    WardType `db:"ward_type" json:"ward_type"`
	Total       int      `db:"total" json:"total"`
	Available   int      `db:"available" json:"available"`
	Occupied    int      `db:"occupied" json:"occupied"`
	Maintenance int      `db:"maintenance" json:"maintenance"`
}
