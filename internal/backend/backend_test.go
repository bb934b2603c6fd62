package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/logging"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/postgrest"
)

func TestOpenSQLiteMigratesAndServes(t *testing.T) {
	cfg := config.DataSourceConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "site.db"),
	}
	ctx := context.Background()

	b, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	rows, err := b.Query(ctx, datasource.Query{Collection: model.CollectionTeamMembers})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	n, err := Migrate(ctx, cfg)
	require.NoError(t, err)
	assert.Zero(t, n, "already migrated on open")
}

func TestOpenPostgREST(t *testing.T) {
	t.Parallel()
	b, err := Open(context.Background(), config.DataSourceConfig{
		Driver:       config.DriverPostgREST,
		PostgRESTURL: "https://example.supabase.co/rest/v1",
	}, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &postgrest.Client{}, b)

	_, err = Migrate(context.Background(), config.DataSourceConfig{Driver: config.DriverPostgREST})
	assert.ErrorIs(t, err, ErrUnmanagedSchema)
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), config.DataSourceConfig{Driver: "mongo"}, logging.Discard())
	assert.ErrorContains(t, err, `unknown driver "mongo"`)
}
