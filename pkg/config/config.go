package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config groups every tunable the client binaries read from the environment.
type Config struct {
	App        AppConfig
	API        APIConfig
	GuestStore GuestStoreConfig
	Redis      RedisConfig
	Sync       SyncConfig
	Mock       MockConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.GuestStore.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AGRILINK_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"AGRILINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRILINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the AgriLink backend gateway.
type APIConfig struct {
	BaseURL   string        `envconfig:"AGRILINK_API_BASE_URL" default:"http://localhost:8089/api/v1"`
	Timeout   time.Duration `envconfig:"AGRILINK_API_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"AGRILINK_API_USER_AGENT" default:"agrilink-client/1.0"`
}

// Guest store backends.
const (
	GuestBackendMemory = "memory"
	GuestBackendFile   = "file"
	GuestBackendSQLite = "sqlite"
	GuestBackendRedis  = "redis"
)

// GuestStoreConfig selects where unauthenticated cart/wishlist state lives.
type GuestStoreConfig struct {
	Backend string `envconfig:"AGRILINK_GUEST_BACKEND" default:"file"`
	// Path is the state directory for the file and sqlite backends. Empty
	// means a per-user default under the OS config directory.
	Path string `envconfig:"AGRILINK_GUEST_PATH"`
}

func (g GuestStoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(g.Backend)) {
	case GuestBackendMemory, GuestBackendFile, GuestBackendSQLite, GuestBackendRedis:
		return nil
	default:
		return fmt.Errorf("unknown guest store backend %q", g.Backend)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRILINK_REDIS_URL"`
	Address      string        `envconfig:"AGRILINK_REDIS_ADDR"`
	Password     string        `envconfig:"AGRILINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRILINK_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"AGRILINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRILINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRILINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SyncConfig bounds the merge-on-login replay.
type SyncConfig struct {
	ItemTimeout time.Duration `envconfig:"AGRILINK_SYNC_ITEM_TIMEOUT" default:"10s"`
}

// MockConfig configures the local development backend.
type MockConfig struct {
	Port string `envconfig:"AGRILINK_MOCK_PORT" default:"8089"`
}
