package ipd

import (
	"context"
	"errors"
	"fmt"
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

const admissionCols = `admission_id, patient_id, visit_id, bed_id, admission_date, discharge_date, file_charge, status, diagnosis, created_at, updated_at`

func scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.AdmissionID, &a.PatientID, &a.VisitID, &a.BedID,
		&a.AdmissionDate, &a.DischargeDate, &a.FileCharge, &a.Status,
		&a.Diagnosis, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Admission) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admissions (admission_id, patient_id, visit_id, bed_id, admission_date, file_charge, status, diagnosis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.AdmissionID, a.PatientID, a.VisitID, a.BedID, a.AdmissionDate, a.FileCharge, a.Status, a.Diagnosis)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, admissionID string) (*Admission, error) {
	return scanAdmission(r.conn(ctx).QueryRow(ctx,
		`SELECT `+admissionCols+` FROM admissions WHERE admission_id = $1`, admissionID))
}

func (r *repoPG) SetDischarged(ctx context.Context, admissionID string, at time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions SET status='DISCHARGED', discharge_date=$2, updated_at=NOW()
		WHERE admission_id = $1 AND status = 'ADMITTED'`,
		admissionID, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) SetBed(ctx context.Context, admissionID string, bedID int) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions SET bed_id=$2, updated_at=NOW()
		WHERE admission_id = $1 AND status = 'ADMITTED'`,
		admissionID, bedID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Admission, int, error) {
	return r.list(ctx, `patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *repoPG) ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	return r.list(ctx, `status = $1`, []interface{}{StatusAdmitted}, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Admission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM admissions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT `+admissionCols+` FROM admissions WHERE `+where+
		` ORDER BY admission_date DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var admissions []*Admission
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		admissions = append(admissions, a)
	}
	return admissions, total, rows.Err()
}
