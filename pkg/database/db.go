// Package database wraps sqlx with a narrow session interface so repositories
// can run against either the pooled connection or an open transaction.
package database

import (
	"context"
	"database/sql"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Session is the query surface shared by DB and Tx. Both *sqlx.DB and
// *sqlx.Tx satisfy it, so repositories never need to know whether they are
// inside a transaction.
type Session interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
}

// Tx is an open transaction. Commit and Rollback are idempotent: the second
// call on a closed transaction is a no-op.
type Tx interface {
	Session
	Commit() error
	Rollback() error
}

// DB is the root database handle.
type DB interface {
	Session
	Begin(ctx context.Context) (Tx, error)
	PingContext(ctx context.Context) error
	Close() error
}

// Instance implements DB over a sqlx pool.
type Instance struct {
	*sqlx.DB
	logger ectologger.Logger
}

// New wraps a sqlx pool in the DB interface.
func New(db *sqlx.DB, logger ectologger.Logger) DB {
	return &Instance{
		DB:     db,
		logger: logger,
	}
}

// Begin opens a new transaction.
func (d *Instance) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		d.logger.WithContext(ctx).WithError(err).Error("Failed to begin transaction")
		return nil, err
	}
	return &Transaction{Tx: tx, logger: d.logger}, nil
}
