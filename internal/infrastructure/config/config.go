package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	Timezone  string `env:"TIMEZONE,  default=Local"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Notify    NotifyConfig
	Bot       BotConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=BotDiscord"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	DedupTTL time.Duration `env:"DEDUP_TTL,      default=15m"`
}

type SchedulerConfig struct {
	Tick  time.Duration `env:"TICK_INTERVAL,  default=1s"`
	Sweep time.Duration `env:"SWEEP_INTERVAL, default=1m"`
}

type NotifyConfig struct {
	Workers     int     `env:"NOTIFY_WORKERS, default=4"`
	Channel     string  `env:"NOTIFY_CHANNEL, default=rentbot:notifications"`
	DisplayRate float64 `env:"DISPLAY_RATE,   default=1"`
}

type BotConfig struct {
	ProviderRoleID string `env:"PROVIDER_ROLE_ID"`
	CurrencyLabel  string `env:"CURRENCY_LABEL, default=VND"`
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadDotEnv reads the given .env files into the process environment without
// overriding variables already set. It reports whether any file was missing.
func LoadDotEnv(files ...string) (missing bool, err error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = true
				continue
			}
			return missing, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return missing, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.Scheduler.Tick <= 0 || cfg.Scheduler.Sweep <= 0 {
		return nil, errors.New("config: TICK_INTERVAL and SWEEP_INTERVAL must be positive")
	}
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required in production")
	}
	return &cfg, nil
}
