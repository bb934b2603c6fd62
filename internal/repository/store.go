// Package repository implements the data source contract on top of SQL
// databases. Queries are built with squirrel and run through a small querier
// adapter, one for pgx and one for database/sql (SQLite).
package repository

import (
	"context"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/pqui/archstudio/internal/datasource"
)

// querier runs built SQL and returns rows keyed by column name, with values
// normalised to what encoding/json understands.
type querier interface {
	query(ctx context.Context, sql string, args ...any) ([]datasource.Row, error)
	exec(ctx context.Context, sql string, args ...any) error
	close() error
}

// Store is a datasource.Backend over a SQL database.
type Store struct {
	db querier
	sb sq.StatementBuilderType
}

var _ datasource.Backend = (*Store)(nil)

// Query runs q, then resolves each expansion with one batched lookup.
func (s *Store) Query(ctx context.Context, q datasource.Query) ([]datasource.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	builder := s.sb.Select("*").From(q.Collection)
	for _, f := range q.Filters {
		builder = builder.Where(sq.Eq{f.Field: f.Value})
	}
	if q.Order.Field != "" {
		builder = builder.OrderBy(q.Order.Field + " " + q.Order.Direction.String())
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", q.Collection, err)
	}

	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	for _, e := range q.Expand {
		if err := s.expand(ctx, rows, e); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (s *Store) expand(ctx context.Context, rows []datasource.Row, e datasource.Expansion) error {
	var keys []any
	seen := map[any]bool{}
	for _, row := range rows {
		k, ok := row[e.LocalKey]
		if !ok || k == nil || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}

	related := map[any]datasource.Row{}
	if len(keys) > 0 {
		query, args, err := s.sb.Select("*").
			From(e.Collection).
			Where(sq.Eq{e.ForeignKey: keys}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build %s expansion: %w", e.As, err)
		}
		found, err := s.db.query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("expand %s from %s: %w", e.As, e.Collection, err)
		}
		for _, r := range found {
			related[r[e.ForeignKey]] = r
		}
	}

	for _, row := range rows {
		if r, ok := related[row[e.LocalKey]]; ok {
			row[e.As] = r
		} else {
			row[e.As] = nil
		}
	}
	return nil
}

// Insert stores one row. Columns are written in name order.
func (s *Store) Insert(ctx context.Context, collection string, row datasource.Row) error {
	if err := datasource.ValidateRow(collection, row); err != nil {
		return err
	}
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	vals := make([]any, 0, len(cols))
	for _, col := range cols {
		vals = append(vals, row[col])
	}

	query, args, err := s.sb.Insert(collection).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", collection, err)
	}
	if err := s.db.exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.close()
}
