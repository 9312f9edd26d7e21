// Package manager checks for and creates the target database through the
// maintenance database. Identifiers are quoted with pgx.Identifier.Sanitize.
package manager

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

const queryDatabaseExists = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"

var _ pgetl.DatabaseManager = (*Manager)(nil)

// Manager is stateless; thread safety depends on the injected DBConnection.
type Manager struct{}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) Exists(ctx context.Context, conn pgetl.DBConnection, dbName string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	return exists, nil
}

// Create runs CREATE DATABASE on a pinned connection outside any transaction.
func (m *Manager) Create(ctx context.Context, conn pgetl.DBConnection, dbName string) error {
	pooledConn, err := conn.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer pooledConn.Release()

	query := fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{dbName}.Sanitize())
	if _, err := pooledConn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create database %q: %w", dbName, err)
	}
	return nil
}
