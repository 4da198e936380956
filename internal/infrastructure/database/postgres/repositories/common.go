// Package repositories implements the domain repository contracts over the
// PostgreSQL store.
package repositories

import (
	"context"
	"database/sql"
)

// queryExecutor abstracts *sql.DB and *sql.Tx so repository methods run the
// same inside and outside a transaction.
type queryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
