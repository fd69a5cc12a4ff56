// config/config.go - Typed runtime configuration read from the environment
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"shelleylegion/database"
	"shelleylegion/storage"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"3000"`
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	Admin     Admin
	Storage   Storage
	Database  Database
	RateLimit RateLimit
}

type Admin struct {
	JWTSecret    string        `envconfig:"JWT_SECRET" required:"true"`
	Username     string        `envconfig:"ADMIN_USERNAME" default:"coach"`
	PasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`
	Password     string        `envconfig:"ADMIN_PASSWORD"`
	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

type Storage struct {
	Backend            string        `envconfig:"STORAGE_BACKEND" default:"filesystem"`
	DataDir            string        `envconfig:"DATA_DIR" default:"./data"`
	Prefix             string        `envconfig:"DATA_PREFIX"`
	Timeout            time.Duration `envconfig:"STORAGE_TIMEOUT" default:"10s"`
	GCSBucket          string        `envconfig:"GCS_BUCKET"`
	GCSCredentialsFile string        `envconfig:"GCS_CREDENTIALS_FILE"`
	GitHubToken        string        `envconfig:"GITHUB_TOKEN"`
	GitHubOwner        string        `envconfig:"GITHUB_OWNER"`
	GitHubRepo         string        `envconfig:"GITHUB_REPO"`
	GitHubBranch       string        `envconfig:"GITHUB_BRANCH" default:"master"`
}

type Database struct {
	URL      string `envconfig:"DATABASE_URL"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"shelleylegion"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	Verbose  bool   `envconfig:"DB_VERBOSE"`
}

type RateLimit struct {
	Enabled         bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	MaxRequests     int  `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`
	WindowMS        int  `envconfig:"RATE_LIMIT_WINDOW_MS" default:"900000"`
	AuthMaxRequests int  `envconfig:"AUTH_RATE_LIMIT_MAX" default:"5"`
	AuthWindowMS    int  `envconfig:"AUTH_RATE_LIMIT_WINDOW_MS" default:"300000"`
}

// Window returns the general rate limit window.
func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowMS) * time.Millisecond
}

// AuthWindow returns the login rate limit window.
func (r RateLimit) AuthWindow() time.Duration {
	return time.Duration(r.AuthWindowMS) * time.Millisecond
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	return New()
}

// New builds a Config from the process environment only.
func New() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks settings envconfig cannot express.
func (c *Config) Validate() error {
	if len(c.Admin.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters long. Generate one with: openssl rand -base64 64")
	}
	if c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		return errors.New("ADMIN_PASSWORD_HASH must be set (generate one with: legionctl hash-password)")
	}
	if c.IsProduction() && c.Admin.PasswordHash == "" {
		return errors.New("ADMIN_PASSWORD is not accepted in production; set ADMIN_PASSWORD_HASH")
	}

	if err := c.Storage.validate(); err != nil {
		return err
	}

	if c.RateLimit.WindowMS <= 0 {
		c.RateLimit.WindowMS = 900000
	}
	if c.RateLimit.AuthWindowMS <= 0 {
		c.RateLimit.AuthWindowMS = 300000
	}

	if c.IsProduction() && (c.CORSOrigins == "" || c.CORSOrigins == "http://localhost:3000") {
		log.Println("WARNING: CORS_ORIGINS not properly configured for production")
	}
	return nil
}

// StorageOptions maps the storage and database settings onto storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Kind:               c.Storage.Backend,
		DataDir:            c.Storage.DataDir,
		GCSBucket:          c.Storage.GCSBucket,
		GCSPrefix:          c.Storage.Prefix,
		GCSCredentialsFile: c.Storage.GCSCredentialsFile,
		GitHub: storage.GitHubConfig{
			Token:  c.Storage.GitHubToken,
			Owner:  c.Storage.GitHubOwner,
			Repo:   c.Storage.GitHubRepo,
			Branch: c.Storage.GitHubBranch,
			Dir:    c.Storage.Prefix,
		},
		Database: database.Config{
			DSN:      c.Database.URL,
			Host:     c.Database.Host,
			Port:     c.Database.Port,
			User:     c.Database.User,
			Password: c.Database.Password,
			Name:     c.Database.Name,
			SSLMode:  c.Database.SSLMode,
			Verbose:  c.Database.Verbose,
		},
	}
}

func (s *Storage) validate() error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		s.Backend = "filesystem"
	}
	switch s.Backend {
	case "filesystem", "memory", "postgres":
	case "gcs":
		if s.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required for the gcs storage backend")
		}
	case "github":
		if s.GitHubToken == "" || s.GitHubOwner == "" || s.GitHubRepo == "" {
			return errors.New("GITHUB_TOKEN, GITHUB_OWNER and GITHUB_REPO are required for the github storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", s.Backend)
	}
	return nil
}

// LoadStorage reads only the storage and database settings, for tools that
// never serve HTTP and so need no admin credentials.
func LoadStorage() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c.Storage); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &c.Database); err != nil {
		return nil, err
	}
	if err := c.Storage.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
