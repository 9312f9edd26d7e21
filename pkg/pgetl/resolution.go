package pgetl

import (
	"context"
	"fmt"
)

// ResolutionStatus is the outcome of a referential lookup.
type ResolutionStatus int

const (
	Resolved    ResolutionStatus = iota // ids found
	NoMatch                             // query ran, no row
	QueryFailed                         // query itself failed
)

func (s ResolutionStatus) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NoMatch:
		return "no_match"
	case QueryFailed:
		return "query_failed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Resolution carries the looked-up ids. ItemID and CreatorID are set only when Status is Resolved.
type Resolution struct {
	Status    ResolutionStatus
	ItemID    *string
	CreatorID *string
	Err       error
}

// Resolver maps an event's denormalized attributes to catalog ids.
type Resolver interface {
	Resolve(ctx context.Context, title, creatorName *string, duration *float64) Resolution
}
