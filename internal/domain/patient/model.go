package patient

import (
	"time"
)

// Gender is the registered sex category.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

var validGenders = map[Gender]bool{
	GenderMale: true, GenderFemale: true, GenderOther: true,
}

// Patient maps to the patients table. PatientID is assigned at registration
// and never changes; MobileNumber is unique across the hospital.
type Patient struct {
	PatientID    string    `db:"patient_id" json:"patient_id"`
	Name         string    `db:"name" json:"name"`
	Age          int       `db:"age" json:"age"`
	Gender       Gender    `db:"gender" json:"gender"`
	MobileNumber string    `db:"mobile_number" json:"mobile_number"`
	Address      *string   `db:"address" json:"address,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
