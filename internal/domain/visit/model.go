package visit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type distinguishes first consultations from follow-ups; it selects which
// doctor fee is snapshotted onto the visit.
type Type string

const (
	TypeOPDNew      Type = "OPD_NEW"
	TypeOPDFollowup Type = "OPD_FOLLOWUP"
)

var validTypes = map[Type]bool{
	TypeOPDNew: true, TypeOPDFollowup: true,
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var validStatuses = map[Status]bool{
	StatusActive: true, StatusCompleted: true, StatusCancelled: true,
}

// Visit maps to the visits table. SerialNumber is the patient's rank in the
// doctor's queue for that calendar day, starting at 1 each day. OPDFee is a
// snapshot of the doctor's fee at creation time; later fee changes do not
// reprice existing visits.
type Visit struct {
	VisitID      string          `db:"visit_id" json:"visit_id"`
	PatientID    string          `db:"patient_id" json:"patient_id"`
	DoctorID     string          `db:"doctor_id" json:"doctor_id"`
	VisitDate    time.Time       `db:"visit_date" json:"visit_date"`
	VisitType    Type            `db:"visit_type" json:"visit_type"`
	SerialNumber int             `db:"serial_number" json:"serial_number"`
	OPDFee       decimal.Decimal `db:"opd_fee" json:"opd_fee"`
	Status       Status          `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
