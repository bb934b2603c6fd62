package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pqui/archstudio/internal/datasource"
)

// NewSQLite returns a Store backed by a database/sql handle opened with the
// modernc sqlite driver. Close closes the handle.
func NewSQLite(db *sql.DB) *Store {
	return &Store{
		db: &sqlQuerier{db: db},
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

type sqlQuerier struct {
	db *sql.DB
}

func (s *sqlQuerier) query(ctx context.Context, query string, args ...any) ([]datasource.Row, error) {
	rows, err := s.db.QueryContext(ctx, query, sqliteArgs(args)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	out := []datasource.Row{}
	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(datasource.Row, len(types))
		for i, ct := range types {
			v, err := normalizeSQLite(ct.DatabaseTypeName(), values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", ct.Name(), err)
			}
			row[ct.Name()] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *sqlQuerier) exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, sqliteArgs(args)...)
	return err
}

func (s *sqlQuerier) close() error {
	return s.db.Close()
}

// normalizeSQLite maps SQLite storage classes back to the declared column
// type: BOOLEAN columns come back as integers and JSON columns as text.
func normalizeSQLite(declared string, v any) (any, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch strings.ToUpper(declared) {
	case "BOOLEAN", "BOOL":
		if n, ok := v.(int64); ok {
			return n != 0, nil
		}
	case "JSON":
		if s, ok := v.(string); ok {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err != nil {
				return nil, fmt.Errorf("decode json: %w", err)
			}
			return decoded, nil
		}
	}
	return v, nil
}

// sqliteArgs stores timestamps as RFC 3339 text and slices as JSON, matching
// how the schema declares them.
func sqliteArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch t := a.(type) {
		case time.Time:
			out[i] = t.UTC().Format(time.RFC3339Nano)
		case []string:
			data, _ := json.Marshal(t)
			out[i] = string(data)
		default:
			out[i] = a
		}
	}
	return out
}
