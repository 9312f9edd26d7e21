package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

type mockGateway struct {
	beginErr     error
	commitErr    error
	rejectTables map[pgetl.Table]bool
	fetchRows    [][]any
	fetchErr     error

	open      bool
	begins    int
	commits   int
	executed  []pgetl.Record
	committed []pgetl.Record
	pending   []pgetl.Record
	fetches   int
	closed    bool
}

func (m *mockGateway) Begin(context.Context) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	if m.open {
		return errors.New("unit of work already open")
	}
	m.open = true
	m.begins++
	m.pending = nil
	return nil
}

func (m *mockGateway) Execute(_ context.Context, rec pgetl.Record) error {
	if !m.open {
		return pgetl.ErrNoUnit
	}
	m.executed = append(m.executed, rec)
	if m.rejectTables[rec.Table()] {
		return &pgetl.RowError{Table: rec.Table(), Err: errors.New("violates not-null constraint")}
	}
	m.pending = append(m.pending, rec)
	return nil
}

func (m *mockGateway) Fetch(context.Context, string, ...any) ([][]any, error) {
	m.fetches++
	return m.fetchRows, m.fetchErr
}

func (m *mockGateway) Commit(context.Context) error {
	if !m.open {
		return pgetl.ErrNoUnit
	}
	m.open = false
	if m.commitErr != nil {
		m.pending = nil
		return m.commitErr
	}
	m.commits++
	m.committed = append(m.committed, m.pending...)
	m.pending = nil
	return nil
}

func (m *mockGateway) Close(context.Context) error {
	m.open = false
	m.closed = true
	return nil
}

type progressRecorder struct {
	lines []string
}

func (p *progressRecorder) FilesFound(n int, root string) {
	p.lines = append(p.lines, fmt.Sprintf("%d files found in %s", n, root))
}

func (p *progressRecorder) FileProcessed(i, n int) {
	p.lines = append(p.lines, fmt.Sprintf("%d/%d files processed.", i, n))
}

func (p *progressRecorder) FileFailed(path, stage string, _ error) {
	p.lines = append(p.lines, fmt.Sprintf("failed %s at %s", path, stage))
}

type observerRecorder struct {
	processed   map[string]int
	failed      map[string]int
	written     map[pgetl.Table]int
	rejected    map[pgetl.Table]int
	resolutions map[pgetl.ResolutionStatus]int
}

func newObserverRecorder() *observerRecorder {
	return &observerRecorder{
		processed:   make(map[string]int),
		failed:      make(map[string]int),
		written:     make(map[pgetl.Table]int),
		rejected:    make(map[pgetl.Table]int),
		resolutions: make(map[pgetl.ResolutionStatus]int),
	}
}

func (o *observerRecorder) FileProcessed(pass string, _ time.Duration) { o.processed[pass]++ }
func (o *observerRecorder) FileFailed(_, stage string)                 { o.failed[stage]++ }
func (o *observerRecorder) RowWritten(t pgetl.Table)                   { o.written[t]++ }
func (o *observerRecorder) RowRejected(t pgetl.Table)                  { o.rejected[t]++ }
func (o *observerRecorder) Resolution(s pgetl.ResolutionStatus)        { o.resolutions[s]++ }

type mockRule struct {
	name string
	out  pgetl.RuleOutput
	err  error
	docs [][]pgetl.Document
}

func (m *mockRule) Name() string { return m.name }

func (m *mockRule) Apply(_ context.Context, docs []pgetl.Document) (pgetl.RuleOutput, error) {
	m.docs = append(m.docs, docs)
	return m.out, m.err
}

type mockConnector struct {
	err error
}

func (m *mockConnector) Connect(context.Context) (*pgxpool.Pool, error) {
	return nil, m.err
}
