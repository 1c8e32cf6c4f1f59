// Package dbx holds the minimal database/sql surface repositories depend on.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the sqlite store and the
// sync-record repository. Both *sql.DB and *sql.Tx satisfy it, so callers
// choose the transaction scope.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
