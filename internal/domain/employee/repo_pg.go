package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const employeeCols = `employee_id, name, post, qualification, employment_status, duty_hours,
	joining_date, monthly_salary, status, created_at, updated_at`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(&e.EmployeeID, &e.Name, &e.Post, &e.Qualification, &e.EmploymentStatus,
		&e.DutyHours, &e.JoiningDate, &e.MonthlySalary, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Employee) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO employees (employee_id, name, post, qualification, employment_status,
			duty_hours, joining_date, monthly_salary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.EmployeeID, e.Name, e.Post, e.Qualification, e.EmploymentStatus,
		e.DutyHours, e.JoiningDate, e.MonthlySalary, e.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, employeeID string) (*Employee, error) {
	return scanEmployee(r.conn(ctx).QueryRow(ctx,
		`SELECT `+employeeCols+` FROM employees WHERE employee_id = $1`, employeeID))
}

func (r *repoPG) Update(ctx context.Context, e *Employee) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE employees SET name=$2, post=$3, qualification=$4, employment_status=$5,
			duty_hours=$6, monthly_salary=$7, status=$8, updated_at=NOW()
		WHERE employee_id = $1`,
		e.EmployeeID, e.Name, e.Post, e.Qualification, e.EmploymentStatus,
		e.DutyHours, e.MonthlySalary, e.Status)
	return err
}

func (r *repoPG) List(ctx context.Context, status Status, limit, offset int) ([]*Employee, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT %s FROM employees%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		employeeCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []*Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

const paymentCols = `payment_id, employee_id, month, year, amount, payment_date, status, notes,
	created_at, updated_at`

func scanPayment(row pgx.Row) (*SalaryPayment, error) {
	var p SalaryPayment
	err := row.Scan(&p.PaymentID, &p.EmployeeID, &p.Month, &p.Year, &p.Amount,
		&p.PaymentDate, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	return &p, err
}

func (r *repoPG) CreatePayment(ctx context.Context, p *SalaryPayment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO salary_payments (payment_id, employee_id, month, year, amount, payment_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.PaymentID, p.EmployeeID, p.Month, p.Year, p.Amount, p.PaymentDate, p.Status, p.Notes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicatePayment
	}
	return err
}

func (r *repoPG) GetPayment(ctx context.Context, paymentID string) (*SalaryPayment, error) {
	return scanPayment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+paymentCols+` FROM salary_payments WHERE payment_id = $1`, paymentID))
}

func (r *repoPG) GetPaymentForPeriod(ctx context.Context, employeeID string, month, year int) (*SalaryPayment, error) {
	return scanPayment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+paymentCols+` FROM salary_payments
		WHERE employee_id = $1 AND month = $2 AND year = $3`, employeeID, month, year))
}

func (r *repoPG) UpdatePayment(ctx context.Context, p *SalaryPayment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE salary_payments SET amount=$2, payment_date=$3, status=$4, notes=$5, updated_at=NOW()
		WHERE payment_id = $1`,
		p.PaymentID, p.Amount, p.PaymentDate, p.Status, p.Notes)
	return err
}

func (r *repoPG) ListPayments(ctx context.Context, f PaymentFilter, limit, offset int) ([]*SalaryPayment, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		where += fmt.Sprintf(` AND employee_id = $%d`, len(args))
	}
	if f.Month != 0 {
		args = append(args, f.Month)
		where += fmt.Sprintf(` AND month = $%d`, len(args))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		where += fmt.Sprintf(` AND year = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM salary_payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT %s FROM salary_payments%s ORDER BY year DESC, month DESC LIMIT $%d OFFSET $%d`,
		paymentCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []*SalaryPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}
