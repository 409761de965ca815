package visit

import (
	"context"
	"errors"
	"time"

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

const visitCols = `visit_id, patient_id, doctor_id, visit_date, visit_type, serial_number, opd_fee, status, created_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.VisitID, &v.PatientID, &v.DoctorID, &v.VisitDate,
		&v.VisitType, &v.SerialNumber, &v.OPDFee, &v.Status, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visits (visit_id, patient_id, doctor_id, visit_date, visit_type, serial_number, opd_fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.VisitID, v.PatientID, v.DoctorID, v.VisitDate, v.VisitType, v.SerialNumber, v.OPDFee, v.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, visitID string) (*Visit, error) {
	return scanVisit(r.conn(ctx).QueryRow(ctx,
		`SELECT `+visitCols+` FROM visits WHERE visit_id = $1`, visitID))
}

func (r *repoPG) MaxSerial(ctx context.Context, doctorID string, day time.Time) (int, error) {
	var max int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(serial_number), 0) FROM visits
		WHERE doctor_id = $1 AND visit_date::date = $2::date`,
		doctorID, day).Scan(&max)
	return max, err
}

func (r *repoPG) UpdateStatus(ctx context.Context, visitID string, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE visits SET status=$2 WHERE visit_id = $1`, visitID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Visit, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM visits WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+visitCols+` FROM visits WHERE patient_id = $1
		ORDER BY visit_date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		visits = append(visits, v)
	}
	return visits, total, rows.Err()
}

func (r *repoPG) ListByDoctorAndDate(ctx context.Context, doctorID string, day time.Time) ([]*Visit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+visitCols+` FROM visits
		WHERE doctor_id = $1 AND visit_date::date = $2::date
		ORDER BY serial_number`, doctorID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
