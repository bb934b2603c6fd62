package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pqui/archstudio/internal/datasource"
)

// NewPostgres returns a Store backed by a pgx pool. Close closes the pool.
func NewPostgres(pool *pgxpool.Pool) *Store {
	return &Store{
		db: &pgxQuerier{pool: pool},
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type pgxQuerier struct {
	pool *pgxpool.Pool
}

func (p *pgxQuerier) query(ctx context.Context, sql string, args ...any) ([]datasource.Row, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := []datasource.Row{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read values: %w", err)
		}
		row := make(datasource.Row, len(fields))
		for i, f := range fields {
			row[f.Name] = normalizePgx(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (p *pgxQuerier) exec(ctx context.Context, sql string, args ...any) error {
	_, err := p.pool.Exec(ctx, sql, args...)
	return err
}

func (p *pgxQuerier) close() error {
	p.pool.Close()
	return nil
}

// normalizePgx turns pgx's native representations into JSON friendly values.
func normalizePgx(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	default:
		return v
	}
}
