package indicator

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Wendpat-byte/banfora/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const indCols = `id, name, type, created_at`

func (r *repoPG) scanRow(row pgx.Row) (*Indicator, error) {
	var ind Indicator
	err := row.Scan(&ind.ID, &ind.Name, &ind.Type, &ind.CreatedAt)
	return &ind, err
}

// Create inserts the indicator. The unique (name, type) constraint is the
// arbiter under concurrent writers; a conflict surfaces as db.ErrDuplicate.
func (r *repoPG) Create(ctx context.Context, ind *Indicator) error {
	ind.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO indicator (id, name, type)
		VALUES ($1, $2, $3)`,
		ind.ID, ind.Name, ind.Type)
	return db.MapError(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Indicator, error) {
	ind, err := r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+indCols+` FROM indicator WHERE id = $1`, id))
	if err != nil {
		return nil, db.MapError(err)
	}
	return ind, nil
}

func (r *repoPG) ListByType(ctx context.Context, t Type) ([]*Indicator, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+indCols+` FROM indicator WHERE type = $1 ORDER BY name ASC`, t)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	var items []*Indicator
	for rows.Next() {
		ind, err := r.scanRow(rows)
		if err != nil {
			return nil, db.MapError(err)
		}
		items = append(items, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return items, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Indicator, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM indicator`).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+indCols+` FROM indicator ORDER BY type, name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()

	var items []*Indicator
	for rows.Next() {
		ind, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, db.MapError(err)
		}
		items = append(items, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.MapError(err)
	}
	return items, total, nil
}
