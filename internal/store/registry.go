package store

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// WritePolicy describes how a table treats a row whose key already exists.
type WritePolicy int

const (
	// PolicyUpsert overwrites every non-key column with the incoming values.
	PolicyUpsert WritePolicy = iota
	// PolicyInsertIfAbsent keeps the stored row untouched.
	PolicyInsertIfAbsent
	// PolicyAppend never conflicts; every row is a new fact.
	PolicyAppend
)

func (p WritePolicy) String() string {
	switch p {
	case PolicyUpsert:
		return "upsert"
	case PolicyInsertIfAbsent:
		return "insert-if-absent"
	case PolicyAppend:
		return "append"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// TableSpec names the columns a record's Values map to, in order.
type TableSpec struct {
	Table   pgetl.Table
	Columns []string
	Key     string
	Policy  WritePolicy
}

// Statement is a prepared-once SQL text for one table.
type Statement struct {
	Spec TableSpec
	SQL  string
}

const queryResolveItem = `SELECT s.song_id, s.artist_id
FROM songs s
JOIN artists a ON s.artist_id = a.artist_id
WHERE s.title = $1 AND a.name = $2 AND COALESCE($3::numeric, 0) <= s.duration
LIMIT 1`

// DefaultSpecs returns the column layout of the five target tables.
// Column order matches the Values method of each record type.
func DefaultSpecs() []TableSpec {
	return []TableSpec{
		{
			Table:   pgetl.TableCatalogItem,
			Columns: []string{"song_id", "title", "artist_id", "year", "duration"},
			Key:     "song_id",
			Policy:  PolicyUpsert,
		},
		{
			Table:   pgetl.TableCreator,
			Columns: []string{"artist_id", "name", "location", "latitude", "longitude"},
			Key:     "artist_id",
			Policy:  PolicyUpsert,
		},
		{
			Table:   pgetl.TableActor,
			Columns: []string{"user_id", "first_name", "last_name", "gender", "level"},
			Key:     "user_id",
			Policy:  PolicyUpsert,
		},
		{
			Table:   pgetl.TableTimeBucket,
			Columns: []string{"start_time", "hour", "day", "week", "month", "year", "weekday"},
			Key:     "start_time",
			Policy:  PolicyInsertIfAbsent,
		},
		{
			Table:   pgetl.TableEvent,
			Columns: []string{"start_time", "user_id", "song_id", "artist_id", "session_id", "length", "location", "user_agent"},
			Policy:  PolicyAppend,
		},
	}
}

// Registry maps each target table to the statement that writes it and carries
// the lookup query used by the resolver. It is immutable after construction.
type Registry struct {
	statements   map[pgetl.Table]Statement
	resolveQuery string
}

// NewRegistry builds the registry for the default table layout.
func NewRegistry() *Registry {
	r, err := NewRegistryFromSpecs(DefaultSpecs())
	if err != nil {
		panic(fmt.Sprintf("default table specs are invalid: %v", err))
	}
	return r
}

// NewRegistryFromSpecs builds a registry and fails unless every table has exactly one spec.
func NewRegistryFromSpecs(specs []TableSpec) (*Registry, error) {
	r := &Registry{
		statements:   make(map[pgetl.Table]Statement, len(specs)),
		resolveQuery: queryResolveItem,
	}

	for _, spec := range specs {
		if !spec.Table.IsValid() {
			return nil, fmt.Errorf("%w: unknown table %s", pgetl.ErrInvalidConfig, spec.Table)
		}
		if _, dup := r.statements[spec.Table]; dup {
			return nil, fmt.Errorf("%w: duplicate spec for table %s", pgetl.ErrInvalidConfig, spec.Table)
		}
		sql, err := buildStatement(spec)
		if err != nil {
			return nil, err
		}
		r.statements[spec.Table] = Statement{Spec: spec, SQL: sql}
	}

	for _, t := range pgetl.Tables() {
		if _, ok := r.statements[t]; !ok {
			return nil, fmt.Errorf("%w: no spec for table %s", pgetl.ErrInvalidConfig, t)
		}
	}
	return r, nil
}

// Statement returns the write statement for t.
func (r *Registry) Statement(t pgetl.Table) (Statement, bool) {
	s, ok := r.statements[t]
	return s, ok
}

// ResolveQuery returns the lookup of (song_id, artist_id) by title, artist name and length.
func (r *Registry) ResolveQuery() string {
	return r.resolveQuery
}

func buildStatement(spec TableSpec) (string, error) {
	if len(spec.Columns) == 0 {
		return "", fmt.Errorf("%w: table %s has no columns", pgetl.ErrInvalidConfig, spec.Table)
	}
	if spec.Policy != PolicyAppend && !containsColumn(spec.Columns, spec.Key) {
		return "", fmt.Errorf("%w: key %q is not a column of %s", pgetl.ErrInvalidConfig, spec.Key, spec.Table)
	}

	quoted := make([]string, len(spec.Columns))
	placeholders := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		quoted[i] = pgx.Identifier{col}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{spec.Table.String()}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))

	key := pgx.Identifier{spec.Key}.Sanitize()
	switch spec.Policy {
	case PolicyUpsert:
		var sets []string
		for i, col := range spec.Columns {
			if col == spec.Key {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", quoted[i], quoted[i]))
		}
		if len(sets) == 0 {
			fmt.Fprintf(&sb, " ON CONFLICT (%s) DO NOTHING", key)
		} else {
			fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(sets, ", "))
		}
	case PolicyInsertIfAbsent:
		fmt.Fprintf(&sb, " ON CONFLICT (%s) DO NOTHING", key)
	case PolicyAppend:
	default:
		return "", fmt.Errorf("%w: unknown write policy %s for %s", pgetl.ErrInvalidConfig, spec.Policy, spec.Table)
	}
	return sb.String(), nil
}

func containsColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
