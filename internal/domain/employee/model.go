package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmploymentStatus string

const (
	EmploymentPermanent EmploymentStatus = "PERMANENT"
	EmploymentProbation EmploymentStatus = "PROBATION"
)

var validEmploymentStatuses = map[EmploymentStatus]bool{
	EmploymentPermanent: true,
	EmploymentProbation: true,
}

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Employee maps to the employees table. Monthly salary is the base figure
// salary payments and slips are generated from.
type Employee struct {
	EmployeeID       string           `db:"employee_id" json:"employee_id"`
	Name             string           `db:"name" json:"name"`
	Post             string           `db:"post" json:"post"`
	Qualification    *string          `db:"qualification" json:"qualification,omitempty"`
	EmploymentStatus EmploymentStatus `db:"employment_status" json:"employment_status"`
	DutyHours        int              `db:"duty_hours" json:"duty_hours"`
	JoiningDate      time.Time        `db:"joining_date" json:"joining_date"`
	MonthlySalary    decimal.Decimal  `db:"monthly_salary" json:"monthly_salary"`
	Status           Status           `db:"status" json:"status"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

type SalaryStatus string

const (
	SalaryPending SalaryStatus = "PENDING"
	SalaryPaid    SalaryStatus = "PAID"
)

// SalaryPayment is one month's salary record for an employee. At most one
// record exists per employee per month and year.
type SalaryPayment struct {
	PaymentID   string          `db:"payment_id" json:"payment_id"`
	EmployeeID  string          `db:"employee_id" json:"employee_id"`
	Month       int             `db:"month" json:"month"`
	Year        int             `db:"year" json:"year"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
	Status      SalaryStatus    `db:"status" json:"status"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// SalarySlip is a computed payslip, never persisted.
type SalarySlip struct {
	EmployeeID       string           `json:"employee_id"`
	EmployeeName     string           `json:"employee_name"`
	Post             string           `json:"post"`
	Month            int              `json:"month"`
	Year             int              `json:"year"`
	JoiningDate      time.Time        `json:"joining_date"`
	EmploymentStatus EmploymentStatus `json:"employment_status"`
	DutyHours        int              `json:"duty_hours"`
	BasicSalary      decimal.Decimal  `json:"basic_salary"`
	GrossSalary      decimal.Decimal  `json:"gross_salary"`
	Deductions       decimal.Decimal  `json:"deductions"`
	NetSalary        decimal.Decimal  `json:"net_salary"`
	GeneratedAt      time.Time        `json:"generated_at"`
}
