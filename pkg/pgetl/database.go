package pgetl

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection is the subset of a pgx pool the provisioner needs on the
// maintenance database.
type DBConnection interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow always returns a non-nil Row; errors surface from Scan.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Acquire pins one connection. CREATE DATABASE cannot run inside a transaction block.
	// Callers must Release it.
	Acquire(ctx context.Context) (PooledConnection, error)
}

// Row is a single result row.
type Row interface {
	Scan(dest ...any) error
}

// PooledConnection is a connection pinned from a pool until Release.
type PooledConnection interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Release()
}

// DatabaseManager checks for and creates the target database.
// Implementations are NOT safe for concurrent use.
type DatabaseManager interface {
	Exists(ctx context.Context, conn DBConnection, dbName string) (bool, error)
	Create(ctx context.Context, conn DBConnection, dbName string) error
}
