package billing

import (
	"context"
	"errors"

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

const chargeCols = `charge_id, visit_id, admission_id, charge_type, charge_name, quantity, rate, total_amount, charge_date, created_by`

func scanCharge(row pgx.Row) (*Charge, error) {
	var c Charge
	err := row.Scan(&c.ChargeID, &c.VisitID, &c.AdmissionID, &c.ChargeType,
		&c.ChargeName, &c.Quantity, &c.Rate, &c.TotalAmount, &c.ChargeDate, &c.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Charge) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billing_charges (charge_id, visit_id, admission_id, charge_type, charge_name, quantity, rate, total_amount, charge_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ChargeID, c.VisitID, c.AdmissionID, c.ChargeType, c.ChargeName,
		c.Quantity, c.Rate, c.TotalAmount, c.ChargeDate, c.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, chargeID string) (*Charge, error) {
	return scanCharge(r.conn(ctx).QueryRow(ctx,
		`SELECT `+chargeCols+` FROM billing_charges WHERE charge_id = $1`, chargeID))
}

func (r *repoPG) Update(ctx context.Context, c *Charge) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing_charges SET charge_name=$2, quantity=$3, rate=$4, total_amount=$5
		WHERE charge_id = $1`,
		c.ChargeID, c.ChargeName, c.Quantity, c.Rate, c.TotalAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, chargeID string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM billing_charges WHERE charge_id = $1`, chargeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) targetClause(target Target) (string, interface{}) {
	if target.VisitID != nil {
		return `visit_id = $1`, *target.VisitID
	}
	return `admission_id = $1`, *target.AdmissionID
}

func (r *repoPG) ListByTarget(ctx context.Context, target Target) ([]*Charge, error) {
	where, arg := r.targetClause(target)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+chargeCols+` FROM billing_charges WHERE `+where+` ORDER BY charge_date`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCharges(rows)
}

func (r *repoPG) ListByTargetAndType(ctx context.Context, target Target, ct ChargeType) ([]*Charge, error) {
	where, arg := r.targetClause(target)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+chargeCols+` FROM billing_charges WHERE `+where+` AND charge_type = $2 ORDER BY charge_date`,
		arg, ct)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCharges(rows)
}

func (r *repoPG) SumByTarget(ctx context.Context, target Target) (decimal.Decimal, error) {
	where, arg := r.targetClause(target)
	var total decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM billing_charges WHERE `+where, arg).Scan(&total)
	return total, err
}

func (r *repoPG) SumByPatient(ctx context.Context, patientID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM billing_charges
		WHERE visit_id IN (SELECT visit_id FROM visits WHERE patient_id = $1)
		   OR admission_id IN (SELECT admission_id FROM admissions WHERE patient_id = $1)`,
		patientID).Scan(&total)
	return total, err
}

func collectCharges(rows pgx.Rows) ([]*Charge, error) {
	var charges []*Charge
	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}
