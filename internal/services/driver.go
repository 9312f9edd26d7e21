package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/pgetl/internal/transform"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// Failure stages recorded in pgetl.FileFailure.
const (
	StageRead      = "read"
	StageParse     = "parse"
	StageTransform = "transform"
	StageBegin     = "begin"
	StageCommit    = "commit"
)

// Progress receives the operator-facing lines of a pass.
type Progress interface {
	FilesFound(n int, root string)
	FileProcessed(i, n int)
	FileFailed(path, stage string, err error)
}

// Observer receives per-file and per-row outcomes. metrics.LoadMetrics implements it.
type Observer interface {
	FileProcessed(pass string, elapsed time.Duration)
	FileFailed(pass, stage string)
	RowWritten(table pgetl.Table)
	RowRejected(table pgetl.Table)
	Resolution(status pgetl.ResolutionStatus)
}

type nopObserver struct{}

func (nopObserver) FileProcessed(string, time.Duration) {}
func (nopObserver) FileFailed(string, string)           {}
func (nopObserver) RowWritten(pgetl.Table)              {}
func (nopObserver) RowRejected(pgetl.Table)             {}
func (nopObserver) Resolution(pgetl.ResolutionStatus)   {}

// DriverOption configures a LoadDriver.
type DriverOption func(*LoadDriver)

// WithObserver routes per-file and per-row outcomes to o.
func WithObserver(o Observer) DriverOption {
	return func(d *LoadDriver) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithClock replaces time.Now, for deterministic durations in tests.
func WithClock(now func() time.Time) DriverOption {
	return func(d *LoadDriver) {
		if now != nil {
			d.now = now
		}
	}
}

// LoadDriver runs one pass: every file under a root goes through a rule and
// into the store, one unit of work per file.
// Thread-Safety: NOT safe for concurrent Run calls; the gateway holds one connection.
type LoadDriver struct {
	walker   pgetl.FileWalker
	gateway  pgetl.StoreGateway
	progress Progress
	observer Observer
	logger   pgetl.Logger
	now      func() time.Time
}

// NewLoadDriver panics on nil dependencies.
func NewLoadDriver(
	walker pgetl.FileWalker,
	gateway pgetl.StoreGateway,
	progress Progress,
	logger pgetl.Logger,
	opts ...DriverOption,
) *LoadDriver {
	if walker == nil {
		panic("walker cannot be nil")
	}
	if gateway == nil {
		panic("gateway cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	d := &LoadDriver{
		walker:   walker,
		gateway:  gateway,
		progress: progress,
		observer: nopObserver{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run loads every file under root with rule. Row rejections and per-file
// failures are recorded in the report and never stop the pass; only a
// walk failure or a cancelled context returns an error. The report is
// non-nil whenever the walk succeeded.
func (d *LoadDriver) Run(ctx context.Context, root string, rule pgetl.Rule) (*pgetl.Report, error) {
	start := d.now()

	files, err := d.walker.Walk(root)
	if err != nil {
		return nil, err
	}

	report := pgetl.NewReport(rule.Name(), root)
	report.FilesTotal = len(files)
	d.progress.FilesFound(len(files), root)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			report.Duration = d.now().Sub(start)
			return report, fmt.Errorf("%s pass stopped after %d/%d files: %w", rule.Name(), i, len(files), err)
		}

		fileStart := d.now()
		if failure := d.loadFile(ctx, path, rule, report); failure != nil {
			report.FilesFailed++
			report.Failures = append(report.Failures, *failure)
			d.observer.FileFailed(rule.Name(), failure.Stage)
			d.logger.Error("%s: %s failed: %v", path, failure.Stage, failure.Err)
			d.progress.FileFailed(path, failure.Stage, failure.Err)
		} else {
			report.FilesProcessed++
			d.observer.FileProcessed(rule.Name(), d.now().Sub(fileStart))
		}
		d.progress.FileProcessed(i+1, len(files))
	}

	report.Duration = d.now().Sub(start)
	return report, nil
}

// loadFile returns nil once the file's unit of work committed, even if some
// rows were rejected.
func (d *LoadDriver) loadFile(ctx context.Context, path string, rule pgetl.Rule, report *pgetl.Report) *pgetl.FileFailure {
	fail := func(stage string, err error) *pgetl.FileFailure {
		return &pgetl.FileFailure{Path: path, Stage: stage, Err: err}
	}

	data, err := d.walker.ReadFile(path)
	if err != nil {
		return fail(StageRead, err)
	}

	docs, err := transform.Decode(data)
	if err != nil {
		return fail(StageParse, err)
	}

	out, err := rule.Apply(ctx, docs)
	if err != nil {
		return fail(StageTransform, err)
	}
	if err := d.gateway.Begin(ctx); err != nil {
		return fail(StageBegin, err)
	}

	written := make(map[pgetl.Table]int)
	for _, rec := range out.Records {
		if err := d.gateway.Execute(ctx, rec); err != nil {
			report.RowsRejected[rec.Table()]++
			d.observer.RowRejected(rec.Table())

			var rowErr *pgetl.RowError
			if !errors.As(err, &rowErr) {
				err = &pgetl.RowError{Table: rec.Table(), Err: err}
			}
			d.logger.Error("%s: %v", path, err)
			continue
		}
		written[rec.Table()]++
	}

	if err := d.gateway.Commit(ctx); err != nil {
		return fail(StageCommit, err)
	}

	for t, n := range written {
		report.RowsWritten[t] += n
		for range n {
			d.observer.RowWritten(t)
		}
	}
	for _, status := range out.Resolutions {
		report.Resolutions[status]++
		d.observer.Resolution(status)
	}
	d.logger.Verbose("%s: committed %d records", path, len(out.Records))
	return nil
}
