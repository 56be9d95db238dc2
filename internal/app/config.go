package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN is optional. Without it the local cache is the only store.
	PGDSN              string        `envconfig:"PG_DSN"`
	LocalDBPath        string        `envconfig:"LOCAL_DB_PATH" default:"quotedesk.db"`
	StoreRemoteTimeout time.Duration `envconfig:"STORE_REMOTE_TIMEOUT" default:"5s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	AuthUsername     string `envconfig:"AUTH_USERNAME" default:"Verandameister"`
	AuthPassword     string `envconfig:"AUTH_PASSWORD" default:"Welkom123!"`
	AuthPasswordHash string `envconfig:"AUTH_PASSWORD_HASH"`

	GotenbergURL       string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
	DocumentStorageDir string `envconfig:"DOCUMENT_STORAGE_DIR" default:"var/documents"`

	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	// ResyncCron schedules store:resync in the worker. Empty disables it.
	ResyncCron string `envconfig:"RESYNC_CRON" default:"@every 5m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.AuthUsername == "" {
		return nil, errors.New("auth username must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// RemoteEnabled reports whether a remote store is configured.
func (c *Config) RemoteEnabled() bool {
	return c != nil && c.PGDSN != ""
}
