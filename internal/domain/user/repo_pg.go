package user

import (
	"context"
	"errors"

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

const userCols = `id, last_name, first_name, identifier, password_hash, role, created_at`

func (r *repoPG) scanRow(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.LastName, &u.FirstName, &u.Identifier,
		&u.PasswordHash, &u.Role, &u.CreatedAt)
	return &u, err
}

// Create inserts the user. The unique identifier constraint is the arbiter
// under concurrent creates; a conflict surfaces as db.ErrDuplicate.
func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO app_user (id, last_name, first_name, identifier, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.LastName, u.FirstName, u.Identifier, u.PasswordHash, u.Role)
	return db.MapError(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.MapError(err)
	}
	return u, nil
}

func (r *repoPG) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	u, err := r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE identifier = $1`, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.MapError(err)
	}
	return u, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM app_user`).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM app_user ORDER BY last_name, first_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()

	var items []*User
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, db.MapError(err)
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.MapError(err)
	}
	return items, total, nil
}
