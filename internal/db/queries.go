package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q running inside tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

type Plot struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Expressions string    `db:"expressions"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type User struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	Password    string    `db:"password"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}

const upsertPlot = `
INSERT INTO plots (id, name, expressions)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name, expressions = EXCLUDED.expressions, updated_at = now()
RETURNING id, name, expressions, created_at, updated_at`

type UpsertPlotParams struct {
	ID          string
	Name        string
	Expressions string
}

func (q *Queries) UpsertPlot(ctx context.Context, arg UpsertPlotParams) (Plot, error) {
	row := q.db.QueryRow(ctx, upsertPlot, arg.ID, arg.Name, arg.Expressions)
	var p Plot
	err := row.Scan(&p.ID, &p.Name, &p.Expressions, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getPlot = `
SELECT id, name, expressions, created_at, updated_at FROM plots WHERE id = $1`

func (q *Queries) GetPlot(ctx context.Context, id string) (Plot, error) {
	row := q.db.QueryRow(ctx, getPlot, id)
	var p Plot
	err := row.Scan(&p.ID, &p.Name, &p.Expressions, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listPlots = `
SELECT id, name, expressions, created_at, updated_at FROM plots ORDER BY updated_at DESC, id`

func (q *Queries) ListPlots(ctx context.Context) ([]Plot, error) {
	rows, err := q.db.Query(ctx, listPlots)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Plot])
}

const deletePlot = `DELETE FROM plots WHERE id = $1`

// DeletePlot returns the number of rows removed.
func (q *Queries) DeletePlot(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deletePlot, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const createUser = `
INSERT INTO users (id, email, password, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name, created_at`

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.ID, arg.Email, arg.Password, arg.DisplayName)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}
