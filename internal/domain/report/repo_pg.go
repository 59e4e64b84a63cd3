package report

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

// InsertRecords writes every row of the bulletin inside one transaction; a
// failed row rolls back the whole bulletin.
func (r *repoPG) InsertRecords(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		for _, rec := range records {
			if rec.ID == uuid.Nil {
				rec.ID = uuid.New()
			}
			_, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO record (
					id, indicator_id, bulletin_number, period_start, period_end, service,
					cases, deaths, notified, isolated, institution_deaths, community_deaths
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				rec.ID, rec.IndicatorID, rec.BulletinNumber, rec.PeriodStart, rec.PeriodEnd,
				rec.Service, rec.Cases, rec.Deaths, rec.Notified, rec.Isolated,
				rec.InstitutionDeaths, rec.CommunityDeaths)
			if err != nil {
				return db.MapError(err)
			}
		}
		return nil
	})
}

func (r *repoPG) SumTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(cases), 0),
		       COALESCE(SUM(deaths), 0),
		       COALESCE(SUM(isolated), 0),
		       COALESCE(SUM(notified), 0)
		FROM record`).
		Scan(&t.TotalCases, &t.TotalDeaths, &t.TotalIsolated, &t.TotalNotified)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &t, nil
}

// The aggregations join from indicator so every indicator of the type shows
// up with zero sums when no record matches. The filter lives in the join
// condition, not the WHERE clause, to keep unmatched indicators in the
// result.
func (r *repoPG) AggregateDiseases(ctx context.Context, f Filter) ([]DiseaseRow, error) {
	clause, args := f.Clause("r", 2)
	query := `
		SELECT i.name,
		       COALESCE(SUM(r.cases), 0),
		       COALESCE(SUM(r.deaths), 0)
		FROM indicator i
		LEFT JOIN record r ON r.indicator_id = i.id AND ` + clause + `
		WHERE i.type = $1
		GROUP BY i.id, i.name
		ORDER BY i.name ASC`

	rows, err := r.conn(ctx).Query(ctx, query, append([]interface{}{"endemic_disease"}, args...)...)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	var out []DiseaseRow
	for rows.Next() {
		var row DiseaseRow
		if err := rows.Scan(&row.Indicator, &row.Cases, &row.Deaths); err != nil {
			return nil, db.MapError(err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *repoPG) AggregateTropical(ctx context.Context, f Filter) ([]TropicalRow, error) {
	clause, args := f.Clause("r", 2)
	query := `
		SELECT i.name,
		       COALESCE(SUM(r.notified), 0),
		       COALESCE(SUM(r.isolated), 0)
		FROM indicator i
		LEFT JOIN record r ON r.indicator_id = i.id AND ` + clause + `
		WHERE i.type = $1
		GROUP BY i.id, i.name
		ORDER BY i.name ASC`

	rows, err := r.conn(ctx).Query(ctx, query, append([]interface{}{"neglected_tropical_disease"}, args...)...)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	var out []TropicalRow
	for rows.Next() {
		var row TropicalRow
		if err := rows.Scan(&row.Indicator, &row.Notified, &row.Isolated); err != nil {
			return nil, db.MapError(err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *repoPG) AggregateDeaths(ctx context.Context, f Filter) ([]DeathRow, error) {
	clause, args := f.Clause("r", 2)
	query := `
		SELECT i.name,
		       COALESCE(SUM(r.institution_deaths), 0),
		       COALESCE(SUM(r.community_deaths), 0),
		       COALESCE(SUM(r.deaths), 0)
		FROM indicator i
		LEFT JOIN record r ON r.indicator_id = i.id AND ` + clause + `
		WHERE i.type = $1
		GROUP BY i.id, i.name
		ORDER BY i.name ASC`

	rows, err := r.conn(ctx).Query(ctx, query, append([]interface{}{"death"}, args...)...)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	var out []DeathRow
	for rows.Next() {
		var row DeathRow
		if err := rows.Scan(&row.Indicator, &row.Institution, &row.Community, &row.Total); err != nil {
			return nil, db.MapError(err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}
