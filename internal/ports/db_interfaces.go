package ports

import (
	"context"
	"database/sql"
)

// DBTX abstracts database operations for both DB and Tx / Abstrait les opérations de BD pour DB et Tx
// Repositories run against the shared connection by default and are rebound
// to a transaction with WithTx for the archive-then-delete sequence.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
