package pgetl

import (
	"time"
)

// FileFailure records why one input file was not loaded (or not fully loaded).
type FileFailure struct {
	Path  string
	Stage string // "read", "parse", "transform", "begin", "commit"
	Err   error
}

// Report summarizes one pass (or a whole pipeline run).
type Report struct {
	Pass           string
	Root           string
	FilesTotal     int
	FilesProcessed int
	FilesFailed    int
	RowsWritten    map[Table]int
	RowsRejected   map[Table]int
	Resolutions    map[ResolutionStatus]int
	Failures       []FileFailure
	Duration       time.Duration
}

// NewReport creates an empty report for the named pass.
func NewReport(pass, root string) *Report {
	return &Report{
		Pass:         pass,
		Root:         root,
		RowsWritten:  make(map[Table]int),
		RowsRejected: make(map[Table]int),
		Resolutions:  make(map[ResolutionStatus]int),
	}
}

// Merge folds other into r. Pass and Root are left as they are.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.FilesTotal += other.FilesTotal
	r.FilesProcessed += other.FilesProcessed
	r.FilesFailed += other.FilesFailed
	for t, n := range other.RowsWritten {
		r.RowsWritten[t] += n
	}
	for t, n := range other.RowsRejected {
		r.RowsRejected[t] += n
	}
	for s, n := range other.Resolutions {
		r.Resolutions[s] += n
	}
	r.Failures = append(r.Failures, other.Failures...)
	r.Duration += other.Duration
}

// TotalRejected returns the number of rejected rows across all tables.
func (r *Report) TotalRejected() int {
	total := 0
	for _, n := range r.RowsRejected {
		total += n
	}
	return total
}
