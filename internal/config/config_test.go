package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, DriverSQLite, cfg.DataSource.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Views.TTL)
	assert.Equal(t, uint64(3), cfg.Site.FeaturedProjectMax)
	assert.Equal(t, "all", cfg.Site.ProjectCategories[0].ID)
	assert.Equal(t, []string{"hello@archstudio.com", "careers@archstudio.com"}, cfg.Site.Emails)
	assert.Len(t, cfg.Contact.SigningSecret, 64, "a random secret is generated when none is set")
	assert.False(t, cfg.QueueEnabled())
	assert.False(t, cfg.StorageEnabled())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  domain: studio.example
datasource:
  driver: postgres
  database_url: postgres://site@localhost/site
redis:
  addr: localhost:6379
site:
  name: Form & Field
  project_categories:
    - {id: all, label: Everything}
    - {id: parks, label: Parks}
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ARCHSTUDIO_DOMAIN", "override.example")
	t.Setenv("CONTACT_SIGNING_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "override.example", cfg.Server.Domain)
	assert.Equal(t, DriverPostgres, cfg.DataSource.Driver)
	assert.Equal(t, "Form & Field", cfg.Site.Name)
	assert.Equal(t, []Category{{ID: "all", Label: "Everything"}, {ID: "parks", Label: "Parks"}}, cfg.Site.ProjectCategories)
	assert.Equal(t, "All Posts", cfg.Site.BlogCategories[0].Label)
	assert.Equal(t, []byte("s3cret"), cfg.Contact.Secret())
	assert.True(t, cfg.QueueEnabled())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.ErrorContains(t, err, "missing.yaml")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := func() *Config {
		return &Config{
			Log:        LogConfig{Level: "info", Format: "text"},
			DataSource: DataSourceConfig{Driver: DriverSQLite, SQLitePath: "site.db"},
			Views:      ViewsConfig{TTL: time.Minute, MaxActive: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DataSource.Driver = "mongo" }, wantErr: `unknown datasource driver "mongo"`},
		{name: "postgres without url", mutate: func(c *Config) { c.DataSource.Driver = DriverPostgres }, wantErr: "database_url is required"},
		{name: "postgrest without url", mutate: func(c *Config) { c.DataSource.Driver = DriverPostgREST }, wantErr: "postgrest_url is required"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: `unknown log level "loud"`},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: `unknown log format "xml"`},
		{name: "negative retries", mutate: func(c *Config) { c.DataSource.RetryMax = -1 }, wantErr: "retry_max"},
		{name: "no views", mutate: func(c *Config) { c.Views.MaxActive = 0 }, wantErr: "views.ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
