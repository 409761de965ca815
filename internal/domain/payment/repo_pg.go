package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

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

const paymentCols = `payment_id, patient_id, visit_id, admission_id, payment_type, amount, payment_mode, payment_status, transaction_reference, notes, payment_date, created_by`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.PaymentID, &p.PatientID, &p.VisitID, &p.AdmissionID,
		&p.Type, &p.Amount, &p.Mode, &p.Status, &p.TransactionRef, &p.Notes,
		&p.PaymentDate, &p.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Payment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payments (payment_id, patient_id, visit_id, admission_id, payment_type, amount, payment_mode, payment_status, transaction_reference, notes, payment_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.PaymentID, p.PatientID, p.VisitID, p.AdmissionID, p.Type, p.Amount,
		p.Mode, p.Status, p.TransactionRef, p.Notes, p.PaymentDate, p.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, paymentID string) (*Payment, error) {
	return scanPayment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE payment_id = $1`, paymentID))
}

func scopeClause(scope Scope) (string, interface{}) {
	switch {
	case scope.VisitID != nil:
		return `visit_id = $1`, *scope.VisitID
	case scope.AdmissionID != nil:
		return `admission_id = $1`, *scope.AdmissionID
	default:
		return `patient_id = $1`, *scope.PatientID
	}
}

func (r *repoPG) ListByScope(ctx context.Context, scope Scope) ([]*Payment, error) {
	where, arg := scopeClause(scope)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE `+where+` ORDER BY payment_date DESC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repoPG) SumByScope(ctx context.Context, scope Scope) (decimal.Decimal, error) {
	where, arg := scopeClause(scope)
	var total decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE `+where, arg).Scan(&total)
	return total, err
}

func (r *repoPG) SumAdvances(ctx context.Context, admissionID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE admission_id = $1 AND payment_type = $2`,
		admissionID, TypeIPDAdvance).Scan(&total)
	return total, err
}

func (r *repoPG) DailyCollection(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE payment_date::date = $1::date AND payment_status = $2`,
		day, StatusCompleted).Scan(&total)
	return total, err
}
