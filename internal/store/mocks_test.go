package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

// txState is shared by a fake transaction and its savepoints.
type txState struct {
	execs      []execCall
	execErr    error
	queries    []string
	queryErr   error
	rows       [][]any
	savepoints []*fakeTx
}

// fakeTx implements the pgx.Tx methods the gateway calls. Others panic through the nil embed.
type fakeTx struct {
	pgx.Tx
	state       *txState
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	sp := &fakeTx{state: f.state}
	f.state.savepoints = append(f.state.savepoints, sp)
	return sp, nil
}

func (f *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.state.execs = append(f.state.execs, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, f.state.execErr
}

func (f *fakeTx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.state.queries = append(f.state.queries, sql)
	if f.state.queryErr != nil {
		return nil, f.state.queryErr
	}
	return &fakeRows{rows: f.state.rows, idx: -1}, nil
}

func (f *fakeTx) Commit(context.Context) error {
	if f.committed || f.rolledBack {
		return pgx.ErrTxClosed
	}
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	if f.committed || f.rolledBack {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return f.rollbackErr
}

type fakeRows struct {
	pgx.Rows
	rows   [][]any
	idx    int
	closed bool
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Values() ([]any, error) { return r.rows[r.idx], nil }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close()                 { r.closed = true }

type fakeConn struct {
	state    *txState
	tx       *fakeTx
	beginErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{state: &txState{}}
}

func (c *fakeConn) Begin(context.Context) (pgx.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	if c.tx != nil && !c.tx.committed && !c.tx.rolledBack {
		return nil, errors.New("transaction already in progress")
	}
	c.tx = &fakeTx{state: c.state}
	return c.tx, nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return (&fakeTx{state: c.state}).Query(ctx, sql, args...)
}
