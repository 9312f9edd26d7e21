package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var _ pgetl.StoreGateway = (*Gateway)(nil)

// Conn is the part of a pgx connection the gateway needs.
// *pgxpool.Conn and *pgx.Conn satisfy it.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Gateway writes records through one connection. Not safe for concurrent use.
type Gateway struct {
	conn     Conn
	release  func()
	registry *Registry
	logger   pgetl.Logger
	tx       pgx.Tx
}

// New wraps conn. The caller keeps ownership of conn.
func New(conn Conn, registry *Registry, logger pgetl.Logger) *Gateway {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if registry == nil {
		panic("registry cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Gateway{conn: conn, registry: registry, logger: logger}
}

// Open acquires a connection from pool. Close returns it.
func Open(ctx context.Context, pool *pgxpool.Pool, registry *Registry, logger pgetl.Logger) (*Gateway, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to acquire connection: %w", pgetl.ErrConnectionFailed, err)
	}
	g := New(conn, registry, logger)
	g.release = conn.Release
	return g, nil
}

func (g *Gateway) Begin(ctx context.Context) error {
	if g.tx != nil {
		return errors.New("unit of work already open")
	}
	tx, err := g.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	g.tx = tx
	return nil
}

// Execute returns a *pgetl.RowError when the statement fails. The savepoint is
// rolled back, so the unit stays usable.
func (g *Gateway) Execute(ctx context.Context, rec pgetl.Record) error {
	if g.tx == nil {
		return pgetl.ErrNoUnit
	}
	stmt, ok := g.registry.Statement(rec.Table())
	if !ok {
		return &pgetl.RowError{Table: rec.Table(), Err: fmt.Errorf("no statement registered")}
	}

	sp, err := g.tx.Begin(ctx)
	if err != nil {
		return &pgetl.RowError{Table: rec.Table(), Err: fmt.Errorf("savepoint: %w", err)}
	}

	if _, err := sp.Exec(ctx, stmt.SQL, rec.Values()...); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			g.logger.Verbose("Rollback to savepoint failed: %v", rbErr)
		}
		return &pgetl.RowError{Table: rec.Table(), Err: err}
	}

	if err := sp.Commit(ctx); err != nil {
		return &pgetl.RowError{Table: rec.Table(), Err: fmt.Errorf("release savepoint: %w", err)}
	}
	return nil
}

// Fetch runs query and returns every row as a slice of decoded values.
// Outside a unit the query runs in its own implicit transaction.
func (g *Gateway) Fetch(ctx context.Context, query string, args ...any) ([][]any, error) {
	if g.tx == nil {
		return collect(g.conn.Query(ctx, query, args...))
	}

	sp, err := g.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("savepoint: %w", err)
	}

	rows, err := collect(sp.Query(ctx, query, args...))
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			g.logger.Verbose("Rollback to savepoint failed: %v", rbErr)
		}
		return nil, err
	}

	if err := sp.Commit(ctx); err != nil {
		return nil, fmt.Errorf("release savepoint: %w", err)
	}
	return rows, nil
}

func (g *Gateway) Commit(ctx context.Context) error {
	if g.tx == nil {
		return pgetl.ErrNoUnit
	}
	tx := g.tx
	g.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return nil
}

// Close rolls back an open unit and releases the connection. Safe to call twice.
func (g *Gateway) Close(ctx context.Context) error {
	var err error
	if g.tx != nil {
		if rbErr := g.tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed to roll back unit of work: %w", rbErr)
		}
		g.tx = nil
	}
	if g.release != nil {
		g.release()
		g.release = nil
	}
	return err
}

func collect(rows pgx.Rows, err error) ([][]any, error) {
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return out, nil
}
