package pgetl

import "context"

// Rule transforms one decoded input file into records.
//
// Implementations:
//   - transform.CatalogRule: song files into a CatalogItem and a Creator
//   - transform.EventRule: log files into TimeBuckets, Actors and Events
type Rule interface {
	// Name identifies the pass in logs and metrics ("catalog", "events").
	Name() string

	// Apply maps the documents of one file to records in submission order.
	Apply(ctx context.Context, docs []Document) (RuleOutput, error)
}

// Document is one decoded JSON object from an input file.
type Document map[string]any

// RuleOutput is the result of applying a rule to one file.
type RuleOutput struct {
	Records     []Record
	Resolutions []ResolutionStatus
}
