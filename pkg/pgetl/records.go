package pgetl

import (
	"fmt"
	"time"
)

// Table identifies one of the five target tables.
type Table int

const (
	TableCatalogItem Table = iota // songs
	TableCreator                  // artists
	TableActor                    // users
	TableTimeBucket               // time
	TableEvent                    // songplays
)

// String returns the SQL table name.
func (t Table) String() string {
	switch t {
	case TableCatalogItem:
		return "songs"
	case TableCreator:
		return "artists"
	case TableActor:
		return "users"
	case TableTimeBucket:
		return "time"
	case TableEvent:
		return "songplays"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// IsValid returns true if the Table is a defined value.
func (t Table) IsValid() bool {
	return t >= TableCatalogItem && t <= TableEvent
}

// Tables returns every target table in creation order.
func Tables() []Table {
	return []Table{TableCreator, TableCatalogItem, TableActor, TableTimeBucket, TableEvent}
}

// Record is a typed row destined for exactly one target table.
// It is implemented only by the types in this file.
type Record interface {
	Table() Table
	// Values returns the statement arguments in registry column order.
	Values() []any
	isRecord()
}

// CatalogItem is a row of the songs table. Upserted by ItemID.
type CatalogItem struct {
	ItemID      *string
	Title       *string
	CreatorID   *string
	ReleaseYear *int
	Duration    *float64
}

func (CatalogItem) Table() Table { return TableCatalogItem }
func (CatalogItem) isRecord()    {}

func (r CatalogItem) Values() []any {
	return []any{r.ItemID, r.Title, r.CreatorID, r.ReleaseYear, r.Duration}
}

// Creator is a row of the artists table. Upserted by CreatorID.
type Creator struct {
	CreatorID *string
	Name      *string
	Location  *string
	Latitude  *float64
	Longitude *float64
}

func (Creator) Table() Table { return TableCreator }
func (Creator) isRecord()    {}

func (r Creator) Values() []any {
	return []any{r.CreatorID, r.Name, r.Location, r.Latitude, r.Longitude}
}

// Actor is a row of the users table. Upserted by ActorID; the later record wins.
type Actor struct {
	ActorID   *int64
	FirstName *string
	LastName  *string
	Category  *string
	Tier      *string
}

func (Actor) Table() Table { return TableActor }
func (Actor) isRecord()    {}

func (r Actor) Values() []any {
	return []any{r.ActorID, r.FirstName, r.LastName, r.Category, r.Tier}
}

// TimeBucket is a row of the time table. Inserted if absent, never updated.
// Weekday counts from Monday = 0.
type TimeBucket struct {
	Timestamp time.Time
	Hour      int
	Day       int
	Week      int
	Month     int
	Year      int
	Weekday   int
}

func (TimeBucket) Table() Table { return TableTimeBucket }
func (TimeBucket) isRecord()    {}

func (r TimeBucket) Values() []any {
	return []any{r.Timestamp, r.Hour, r.Day, r.Week, r.Month, r.Year, r.Weekday}
}

// Event is a row of the songplays table. Append-only; the serial id is assigned by the store.
// ItemID and CreatorID are nil when the resolver finds no match.
// Timestamp is nil when the entry carried no usable ts.
type Event struct {
	Timestamp *time.Time
	ActorID   *int64
	ItemID    *string
	CreatorID *string
	SessionID *int64
	Duration  *float64
	Location  *string
	Agent     *string
}

func (Event) Table() Table { return TableEvent }
func (Event) isRecord()    {}

func (r Event) Values() []any {
	return []any{r.Timestamp, r.ActorID, r.ItemID, r.CreatorID, r.SessionID, r.Duration, r.Location, r.Agent}
}
