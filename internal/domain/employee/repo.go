package employee

import "context"

// PaymentFilter narrows salary payment listings. Zero values mean no filter.
type PaymentFilter struct {
	EmployeeID string
	Month      int
	Year       int
	Status     SalaryStatus
}

// Repository persists employees and their salary payments.
type Repository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, employeeID string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	List(ctx context.Context, status Status, limit, offset int) ([]*Employee, int, error)

	CreatePayment(ctx context.Context, p *SalaryPayment) error
	GetPayment(ctx context.Context, paymentID string) (*SalaryPayment, error)
	GetPaymentForPeriod(ctx context.Context, employeeID string, month, year int) (*SalaryPayment, error)
	UpdatePayment(ctx context.Context, p *SalaryPayment) error
	ListPayments(ctx context.Context, f PaymentFilter, limit, offset int) ([]*SalaryPayment, int, error)
}
