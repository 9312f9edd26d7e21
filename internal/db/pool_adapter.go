package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var _ pgetl.DBConnection = (*PoolAdapter)(nil)

// PoolAdapter exposes a *pgxpool.Pool as pgetl.DBConnection.
type PoolAdapter struct {
	pool *pgxpool.Pool
}

func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	return &PoolAdapter{pool: pool}
}

func (p *PoolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

func (p *PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgetl.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

func (p *PoolAdapter) Acquire(ctx context.Context) (pgetl.PooledConnection, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pooledConn{conn: conn}, nil
}

type pooledConn struct {
	conn *pgxpool.Conn
}

func (p *pooledConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.conn.Exec(ctx, sql, args...)
}

func (p *pooledConn) Release() {
	p.conn.Release()
}
