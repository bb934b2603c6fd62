// Package backend opens the configured content backend for the server and
// the CLI.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/database"
	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/postgrest"
	"github.com/pqui/archstudio/internal/repository"
)

// ErrUnmanagedSchema is returned by Migrate for backends whose schema is
// owned by the hosted service.
var ErrUnmanagedSchema = errors.New("backend: schema is managed by the hosted service")

// Open connects to the configured driver. SQLite files are migrated on open
// so a fresh checkout has content to show.
func Open(ctx context.Context, cfg config.DataSourceConfig, log logrus.FieldLogger) (datasource.Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		applied, err := database.MigrateSQLite(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		if len(applied) > 0 {
			log.WithField("migrations", len(applied)).Info("sqlite schema migrated")
		}
		return repository.NewSQLite(db), nil
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgres(pool), nil
	case config.DriverPostgREST:
		return postgrest.New(postgrest.Options{
			BaseURL:  cfg.PostgRESTURL,
			APIKey:   cfg.PostgRESTKey,
			Timeout:  cfg.Timeout,
			RetryMax: cfg.RetryMax,
			Logger:   log,
		})
	default:
		return nil, fmt.Errorf("backend: unknown driver %q", cfg.Driver)
	}
}

// Migrate applies pending migrations and returns how many ran.
func Migrate(ctx context.Context, cfg config.DataSourceConfig) (int, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		applied, err := database.MigrateSQLite(ctx, db)
		return len(applied), err
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.MaxConns)
		if err != nil {
			return 0, err
		}
		defer pool.Close()
		applied, err := database.MigratePostgres(ctx, pool)
		return len(applied), err
	case config.DriverPostgREST:
		return 0, ErrUnmanagedSchema
	default:
		return 0, fmt.Errorf("backend: unknown driver %q", cfg.Driver)
	}
}
