package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Querier is the statement surface shared by *sqlx.DB, *sqlx.Conn and *sqlx.Tx
type Querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

type connKey struct{}

// WithConn returns a context carrying a request-scoped connection
func WithConn(ctx context.Context, conn *sqlx.Conn) context.Context {
	return context.WithValue(ctx, connKey{}, conn)
}

// ConnFromContext returns the request-scoped connection, if any
func ConnFromContext(ctx context.Context) (*sqlx.Conn, bool) {
	conn, ok := ctx.Value(connKey{}).(*sqlx.Conn)
	return conn, ok && conn != nil
}

// Acquire takes one dedicated connection out of the pool. The caller must Close it
// to hand it back.
func (cp *ConnectionPool) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := cp.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// Querier resolves the handle statements should run on: the request-scoped
// connection when one is attached to ctx, otherwise the pool itself.
func (cp *ConnectionPool) Querier(ctx context.Context) Querier {
	if conn, ok := ConnFromContext(ctx); ok {
		return conn
	}
	return cp.db
}

// WithTx runs fn inside one transaction on the request-scoped connection (or a
// pooled one). fn's error rolls the transaction back; nil commits.
func (cp *ConnectionPool) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var (
		tx  *sqlx.Tx
		err error
	)
	if conn, ok := ConnFromContext(ctx); ok {
		tx, err = conn.BeginTxx(ctx, nil)
	} else {
		tx, err = cp.db.BeginTxx(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			cp.logger.Warn("transaction rollback failed", slog.String("error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
