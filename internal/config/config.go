// Package config centralizes how archstudio reads its settings and exposes
// them as strongly typed Go values. Values come from an optional YAML file
// and environment variables, with env-default tags as the last fallback.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Data source drivers understood by the server and CLI.
const (
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverPostgREST = "postgrest"
)

// Config represents runtime configuration for the site and its worker.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
	Views      ViewsConfig      `yaml:"views"`
	Contact    ContactConfig    `yaml:"contact"`
	Site       SiteConfig       `yaml:"site"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Address         string        `yaml:"address" env:"ARCHSTUDIO_ADDRESS" env-default:":8080"`
	Domain          string        `yaml:"domain" env:"ARCHSTUDIO_DOMAIN" env-default:"archstudio.com"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ARCHSTUDIO_SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"ARCHSTUDIO_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"ARCHSTUDIO_WRITE_TIMEOUT" env-default:"30s"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// DataSourceConfig points the site at its content backend.
type DataSourceConfig struct {
	Driver       string        `yaml:"driver" env:"DATASOURCE_DRIVER" env-default:"sqlite"`
	DatabaseURL  string        `yaml:"database_url" env:"DATABASE_URL"`
	MaxConns     int32         `yaml:"max_conns" env:"DATABASE_MAX_CONNS" env-default:"8"`
	SQLitePath   string        `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"archstudio.db"`
	PostgRESTURL string        `yaml:"postgrest_url" env:"POSTGREST_URL"`
	PostgRESTKey string        `yaml:"postgrest_key" env:"POSTGREST_KEY"`
	Timeout      time.Duration `yaml:"timeout" env:"DATASOURCE_TIMEOUT" env-default:"10s"`
	RetryMax     int           `yaml:"retry_max" env:"DATASOURCE_RETRY_MAX" env-default:"0"`
}

// RedisConfig is used by the asynq client and worker. An empty Addr disables
// the queue and lead archives run in-process instead.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// StorageConfig configures the MinIO/S3 client. An empty Endpoint disables
// object storage: image references are joined onto MediaBaseURL and lead
// archives are skipped.
type StorageConfig struct {
	Endpoint     string        `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey    string        `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey    string        `yaml:"secret_key" env:"S3_SECRET_KEY"`
	UseSSL       bool          `yaml:"use_ssl" env:"S3_USE_SSL" env-default:"false"`
	Region       string        `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	MediaBucket  string        `yaml:"media_bucket" env:"S3_MEDIA_BUCKET" env-default:"media"`
	LeadsBucket  string        `yaml:"leads_bucket" env:"S3_LEADS_BUCKET" env-default:"leads"`
	PresignTTL   time.Duration `yaml:"presign_ttl" env:"S3_PRESIGN_TTL" env-default:"1h"`
	MediaBaseURL string        `yaml:"media_base_url" env:"MEDIA_BASE_URL" env-default:"/media/"`
}

// ViewsConfig bounds the listing view activations held in memory.
type ViewsConfig struct {
	TTL         time.Duration `yaml:"ttl" env:"VIEWS_TTL" env-default:"15m"`
	MaxActive   int           `yaml:"max_active" env:"VIEWS_MAX_ACTIVE" env-default:"1000"`
	LoadTimeout time.Duration `yaml:"load_timeout" env:"VIEWS_LOAD_TIMEOUT" env-default:"10s"`
}

// ContactConfig controls the lead capture form.
type ContactConfig struct {
	SigningSecret string        `yaml:"signing_secret" env:"CONTACT_SIGNING_SECRET"`
	FormTTL       time.Duration `yaml:"form_ttl" env:"CONTACT_FORM_TTL" env-default:"2h"`
	Workers       int           `yaml:"workers" env:"CONTACT_WORKERS" env-default:"2"`
}

// Secret returns the HMAC key for contact form tokens.
func (c ContactConfig) Secret() []byte { return []byte(c.SigningSecret) }

// SiteConfig is the static copy and catalog of the marketing pages.
type SiteConfig struct {
	Name    string `yaml:"name" env:"SITE_NAME" env-default:"ARCH Studio"`
	Tagline string `yaml:"tagline" env:"SITE_TAGLINE" env-default:"Designing Spaces That Inspire"`

	Stats              []Stat     `yaml:"stats"`
	ProjectCategories  []Category `yaml:"project_categories"`
	BlogCategories     []Category `yaml:"blog_categories"`
	Address            []string   `yaml:"address"`
	Phone              string     `yaml:"phone" env:"SITE_PHONE" env-default:"+1 (555) 123-4567"`
	Emails             []string   `yaml:"emails"`
	CareersEmail       string     `yaml:"careers_email" env:"SITE_CAREERS_EMAIL" env-default:"careers@archstudio.com"`
	MapEmbedURL        string     `yaml:"map_embed_url" env:"SITE_MAP_EMBED_URL"`
	OfficeHours        []Hours    `yaml:"office_hours"`
	HeroImageURL       string     `yaml:"hero_image_url" env:"SITE_HERO_IMAGE_URL" env-default:"https://images.pexels.com/photos/323780/pexels-photo-323780.jpeg?auto=compress&cs=tinysrgb&w=1920"`
	FeaturedProjectMax uint64     `yaml:"featured_project_max" env:"SITE_FEATURED_PROJECT_MAX" env-default:"3"`
}

// Category is one entry of a listing's category bar. ID is matched against
// record categories; Label is what visitors see.
type Category struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// Stat is a headline number on the home page.
type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Hours is one row of the office hours table.
type Hours struct {
	Days  string `yaml:"days"`
	Hours string `yaml:"hours"`
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path is determined by CONFIG_PATH (fallback "./config.yaml").
// A missing file is only an error when CONFIG_PATH was set explicitly.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings that would make the site unusable.
func (c *Config) Validate() error {
	var errs []error
	switch c.DataSource.Driver {
	case DriverSQLite:
		if c.DataSource.SQLitePath == "" {
			errs = append(errs, errors.New("datasource.sqlite_path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DataSource.DatabaseURL == "" {
			errs = append(errs, errors.New("datasource.database_url is required for the postgres driver"))
		}
	case DriverPostgREST:
		if c.DataSource.PostgRESTURL == "" {
			errs = append(errs, errors.New("datasource.postgrest_url is required for the postgrest driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown datasource driver %q", c.DataSource.Driver))
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.DataSource.RetryMax < 0 {
		errs = append(errs, errors.New("datasource.retry_max must not be negative"))
	}
	if c.Views.TTL <= 0 || c.Views.MaxActive <= 0 {
		errs = append(errs, errors.New("views.ttl and views.max_active must be positive"))
	}
	return errors.Join(errs...)
}

// QueueEnabled reports whether lead archives go through asynq.
func (c *Config) QueueEnabled() bool { return c.Redis.Addr != "" }

// StorageEnabled reports whether a MinIO/S3 endpoint is configured.
func (c *Config) StorageEnabled() bool { return c.Storage.Endpoint != "" }

func (c *Config) applyDefaults() {
	if c.Contact.SigningSecret == "" {
		// Tokens then only survive until restart, which is fine for a
		// single instance.
		c.Contact.SigningSecret = randomSecret()
	}
	if c.Contact.Workers <= 0 {
		c.Contact.Workers = 1
	}
	if c.Views.LoadTimeout <= 0 {
		c.Views.LoadTimeout = 10 * time.Second
	}
	c.Site.applyDefaults()
}

func (s *SiteConfig) applyDefaults() {
	if len(s.ProjectCategories) == 0 {
		s.ProjectCategories = []Category{
			{ID: "all", Label: "All Projects"},
			{ID: "residential", Label: "Residential"},
			{ID: "commercial", Label: "Commercial"},
			{ID: "institutional", Label: "Institutional"},
			{ID: "urban", Label: "Urban Design"},
		}
	}
	if len(s.BlogCategories) == 0 {
		s.BlogCategories = []Category{
			{ID: "all", Label: "All Posts"},
			{ID: "news", Label: "News"},
			{ID: "insights", Label: "Insights"},
			{ID: "projects", Label: "Projects"},
		}
	}
	if len(s.Stats) == 0 {
		s.Stats = []Stat{
			{Value: "25+", Label: "Design Awards"},
			{Value: "150+", Label: "Completed Projects"},
			{Value: "20+", Label: "Team Members"},
		}
	}
	if len(s.Address) == 0 {
		s.Address = []string{"123 Design Street", "San Francisco, CA 94102", "United States"}
	}
	if len(s.Emails) == 0 {
		s.Emails = []string{"hello@archstudio.com", s.CareersEmail}
	}
	if len(s.OfficeHours) == 0 {
		s.OfficeHours = []Hours{
			{Days: "Monday - Friday", Hours: "9:00 AM - 6:00 PM"},
			{Days: "Saturday", Hours: "By Appointment"},
			{Days: "Sunday", Hours: "Closed"},
		}
	}
	if s.FeaturedProjectMax == 0 {
		s.FeaturedProjectMax = 3
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "archstudio-fallback-secret"
	}
	return hex.EncodeToString(buf)
}
