// Package resolver maps an event's song title, artist name and length back to
// the catalog ids written by the catalog pass.
package resolver

import (
	"context"
	"fmt"

	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var _ pgetl.Resolver = (*Resolver)(nil)

// Fetcher runs a read query. pgetl.StoreGateway satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, query string, args ...any) ([][]any, error)
}

// Resolver looks up (song_id, artist_id) with a single query per call.
// The match requires the stored duration to be at least the supplied one;
// a nil duration matches any stored duration.
type Resolver struct {
	fetcher Fetcher
	query   string
	logger  pgetl.Logger
}

// New panics on nil dependencies or an empty query.
func New(fetcher Fetcher, query string, logger pgetl.Logger) *Resolver {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if query == "" {
		panic("query cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Resolver{fetcher: fetcher, query: query, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, title, creatorName *string, duration *float64) pgetl.Resolution {
	rows, err := r.fetcher.Fetch(ctx, r.query, title, creatorName, duration)
	if err != nil {
		r.logger.Error("Catalog lookup failed for %q by %q: %v", deref(title), deref(creatorName), err)
		return pgetl.Resolution{Status: pgetl.QueryFailed, Err: err}
	}
	if len(rows) == 0 {
		return pgetl.Resolution{Status: pgetl.NoMatch}
	}

	row := rows[0]
	if len(row) < 2 {
		err := fmt.Errorf("lookup returned %d columns, want 2", len(row))
		r.logger.Error("Catalog lookup failed for %q by %q: %v", deref(title), deref(creatorName), err)
		return pgetl.Resolution{Status: pgetl.QueryFailed, Err: err}
	}

	return pgetl.Resolution{
		Status:    pgetl.Resolved,
		ItemID:    asString(row[0]),
		CreatorID: asString(row[1]),
	}
}

func asString(v any) *string {
	switch s := v.(type) {
	case nil:
		return nil
	case string:
		return &s
	default:
		str := fmt.Sprint(s)
		return &str
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
