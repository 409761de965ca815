package ot

import (
	"context"
	"errors"

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

const procedureCols = `ot_id, admission_id, operation_name, operation_date, duration_minutes, surgeon_name, anesthesia_type, notes, created_at, created_by`

func scanProcedure(row pgx.Row) (*Procedure, error) {
	var p Procedure
	err := row.Scan(&p.OTID, &p.AdmissionID, &p.OperationName, &p.OperationDate,
		&p.DurationMinutes, &p.SurgeonName, &p.AnesthesiaType, &p.Notes,
		&p.CreatedAt, &p.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Procedure) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ot_procedures (ot_id, admission_id, operation_name, operation_date, duration_minutes, surgeon_name, anesthesia_type, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.OTID, p.AdmissionID, p.OperationName, p.OperationDate, p.DurationMinutes,
		p.SurgeonName, p.AnesthesiaType, p.Notes, p.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, otID string) (*Procedure, error) {
	return scanProcedure(r.conn(ctx).QueryRow(ctx,
		`SELECT `+procedureCols+` FROM ot_procedures WHERE ot_id = $1`, otID))
}

func (r *repoPG) ListByAdmission(ctx context.Context, admissionID string) ([]*Procedure, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+procedureCols+` FROM ot_procedures WHERE admission_id = $1 ORDER BY operation_date DESC`,
		admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var procedures []*Procedure
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, err
		}
		procedures = append(procedures, p)
	}
	return procedures, rows.Err()
}
