package transform

import (
	"context"
	"time"

	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var _ pgetl.Rule = (*EventRule)(nil)

// EventRule turns a log file into TimeBuckets, Actors and Events, in that order.
// Only entries whose page is pgetl.PlayedPage are kept.
type EventRule struct {
	resolver pgetl.Resolver
}

// NewEventRule panics if resolver is nil.
func NewEventRule(resolver pgetl.Resolver) *EventRule {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	return &EventRule{resolver: resolver}
}

func (r *EventRule) Name() string { return pgetl.PassEvents }

// Apply never fails the file for a bad entry. A played entry without a usable
// ts gets no TimeBucket and its Event carries a nil timestamp.
func (r *EventRule) Apply(ctx context.Context, docs []pgetl.Document) (pgetl.RuleOutput, error) {
	var buckets []pgetl.Record
	var events []pgetl.Record
	var resolutions []pgetl.ResolutionStatus
	actors := newActorSet()

	for _, doc := range docs {
		page := stringField(doc, "page")
		if page == nil || *page != pgetl.PlayedPage {
			continue
		}

		var ts *time.Time
		if ms := int64Field(doc, "ts"); ms != nil {
			t := TimestampFromMillis(*ms)
			ts = &t
			buckets = append(buckets, NewTimeBucket(t))
		}

		actorID := int64Field(doc, "userId")
		actors.put(pgetl.Actor{
			ActorID:   actorID,
			FirstName: stringField(doc, "firstName"),
			LastName:  stringField(doc, "lastName"),
			Category:  stringField(doc, "gender"),
			Tier:      stringField(doc, "level"),
		})

		duration := floatField(doc, "length")
		res := r.resolver.Resolve(ctx, stringField(doc, "song"), stringField(doc, "artist"), duration)
		resolutions = append(resolutions, res.Status)

		events = append(events, pgetl.Event{
			Timestamp: ts,
			ActorID:   actorID,
			ItemID:    res.ItemID,
			CreatorID: res.CreatorID,
			SessionID: int64Field(doc, "sessionId"),
			Duration:  duration,
			Location:  stringField(doc, "location"),
			Agent:     stringField(doc, "userAgent"),
		})
	}

	records := make([]pgetl.Record, 0, len(buckets)+actors.len()+len(events))
	records = append(records, buckets...)
	records = append(records, actors.records()...)
	records = append(records, events...)

	return pgetl.RuleOutput{Records: records, Resolutions: resolutions}, nil
}

// actorSet keeps the last Actor per id in first-seen order. Actors without an
// id are kept individually so the store can reject each of them.
type actorSet struct {
	byID  map[int64]int
	items []pgetl.Actor
}

func newActorSet() *actorSet {
	return &actorSet{byID: make(map[int64]int)}
}

func (s *actorSet) put(a pgetl.Actor) {
	if a.ActorID != nil {
		if idx, seen := s.byID[*a.ActorID]; seen {
			s.items[idx] = a
			return
		}
		s.byID[*a.ActorID] = len(s.items)
	}
	s.items = append(s.items, a)
}

func (s *actorSet) len() int { return len(s.items) }

func (s *actorSet) records() []pgetl.Record {
	out := make([]pgetl.Record, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, a)
	}
	return out
}
