// Package datasource defines the contract between the site and its hosted
// content backend: ordered, filtered queries with optional expansions, and
// a write-only submission sink. Backends live in internal/repository (SQL)
// and internal/postgrest (HTTP).
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidQuery is returned for queries a backend must not run, such as
// identifiers that are not plain column or table names.
var ErrInvalidQuery = errors.New("invalid query")

// Row is one record as returned by a backend, keyed by column name.
// Expanded fields hold a nested Row (or nil).
type Row map[string]any

// Direction orders results.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Order sorts by a single field.
type Order struct {
	Field     string
	Direction Direction
}

// Eq keeps rows whose Field equals Value.
type Eq struct {
	Field string
	Value any
}

// Expansion resolves LocalKey against Collection's ForeignKey and stores the
// matching row under As. Rows without a match get a nil As.
type Expansion struct {
	As         string
	LocalKey   string
	Collection string
	ForeignKey string
}

// Query describes one read against a collection.
type Query struct {
	Collection string
	Filters    []Eq
	Order      Order
	Limit      uint64
	Expand     []Expansion
}

// Source runs queries. Implementations must preserve the requested order.
type Source interface {
	Query(ctx context.Context, q Query) ([]Row, error)
}

// Sink stores submissions. There is no read-back.
type Sink interface {
	Insert(ctx context.Context, collection string, row Row) error
}

// Backend is a Source that is also a Sink; every driver provides both.
type Backend interface {
	Source
	Sink
	Close() error
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether s may be used as a table or column name.
func ValidIdentifier(s string) bool {
	return identifier.MatchString(s)
}

// Validate checks every identifier in q. Backends call it before building
// SQL or URLs, since identifiers cannot be bound as parameters.
func (q Query) Validate() error {
	if !ValidIdentifier(q.Collection) {
		return fmt.Errorf("%w: collection %q", ErrInvalidQuery, q.Collection)
	}
	for _, f := range q.Filters {
		if !ValidIdentifier(f.Field) {
			return fmt.Errorf("%w: filter field %q", ErrInvalidQuery, f.Field)
		}
	}
	if q.Order.Field != "" && !ValidIdentifier(q.Order.Field) {
		return fmt.Errorf("%w: order field %q", ErrInvalidQuery, q.Order.Field)
	}
	for _, e := range q.Expand {
		for _, id := range []string{e.As, e.LocalKey, e.Collection, e.ForeignKey} {
			if !ValidIdentifier(id) {
				return fmt.Errorf("%w: expansion %q", ErrInvalidQuery, id)
			}
		}
	}
	return nil
}

// ValidateRow checks the column names of a row about to be inserted.
func ValidateRow(collection string, row Row) error {
	if !ValidIdentifier(collection) {
		return fmt.Errorf("%w: collection %q", ErrInvalidQuery, collection)
	}
	if len(row) == 0 {
		return fmt.Errorf("%w: empty row", ErrInvalidQuery)
	}
	for col := range row {
		if !ValidIdentifier(col) {
			return fmt.Errorf("%w: column %q", ErrInvalidQuery, col)
		}
	}
	return nil
}

// Decode converts backend rows into typed records using their json tags.
func Decode[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
