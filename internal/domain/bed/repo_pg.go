package bed

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

const bedCols = `id, bed_number, ward_type, per_day_charge, status, created_at, updated_at`

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.BedNumber, &b.WardType, &b.PerDayCharge,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Bed) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO beds (bed_number, ward_type, per_day_charge, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		b.BedNumber, b.WardType, b.PerDayCharge, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Bed, error) {
	return scanBed(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bedCols+` FROM beds WHERE id = $1`, id))
}

func (r *repoPG) GetByNumber(ctx context.Context, bedNumber string) (*Bed, error) {
	return scanBed(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bedCols+` FROM beds WHERE bed_number = $1`, bedNumber))
}

func (r *repoPG) Update(ctx context.Context, b *Bed) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET bed_number=$2, ward_type=$3, per_day_charge=$4, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.BedNumber, b.WardType, b.PerDayCharge)
	return err
}

// CompareAndSetStatus relies on the row-level conditional update to serialize
// concurrent allocation attempts: two admits racing for the same bed see
// exactly one of them win.
func (r *repoPG) CompareAndSetStatus(ctx context.Context, id int, from, to Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET status=$3, updated_at=NOW()
		WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) List(ctx context.Context, ward WardType, status Status, limit, offset int) ([]*Bed, int, error) {
	where := "TRUE"
	args := []interface{}{}
	n := 0
	if ward != "" {
		n++
		where += fmt.Sprintf(" AND ward_type = $%d", n)
		args = append(args, ward)
	}
	if status != "" {
		n++
		where += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM beds WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+bedCols+` FROM beds WHERE `+where+
		` ORDER BY bed_number LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var beds []*Bed
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, 0, err
		}
		beds = append(beds, b)
	}
	return beds, total, rows.Err()
}

func (r *repoPG) Occupancy(ctx context.Context) ([]*OccupancyStats, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT ward_type,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'AVAILABLE') AS available,
			COUNT(*) FILTER (WHERE status = 'OCCUPIED') AS occupied,
			COUNT(*) FILTER (WHERE status = 'MAINTENANCE') AS maintenance
		FROM beds GROUP BY ward_type ORDER BY ward_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*OccupancyStats
	for rows.Next() {
		var s OccupancyStats
		if err := rows.Scan(&s.WardType, &s.Total, &s.Available, &s.Occupied, &s.Maintenance); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}
