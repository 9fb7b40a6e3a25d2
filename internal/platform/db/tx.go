package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// Queryable is the subset of pgx operations shared by *pgxpool.Pool,
// *pgxpool.Conn and pgx.Tx. Repositories accept it so that the same code
// runs inside and outside a transaction.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ConnFromContext retrieves a transaction previously stored by WithTx, or nil
// when the context carries none.
func ConnFromContext(ctx context.Context) Queryable {
	q, _ := ctx.Value(txKey).(Queryable)
	return q
}

// WithTx runs fn inside a single transaction. The transaction is exposed to
// repositories through the context, so nested repository calls made from fn
// share it. Rolls back on error or panic, commits otherwise.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey, Queryable(tx))); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
