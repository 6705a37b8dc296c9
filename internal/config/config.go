package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	TransportTCP   = "tcp"
	TransportRedis = "redis"

	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageNone   = "none"
)

type Config struct {
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string     `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level
	LogFile     string     `env:"WORLDFORGE_LOG_FILE"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	Model           string `env:"WORLDFORGE_MODEL" envDefault:"claude-sonnet-4-20250514"`

	PeerTransport string        `env:"WORLDFORGE_PEER_TRANSPORT" envDefault:"tcp"`
	PeerHost      string        `env:"WORLDFORGE_PEER_HOST" envDefault:"localhost"`
	PeerPort      int           `env:"WORLDFORGE_PEER_PORT" envDefault:"8765"`
	PeerTimeout   time.Duration `env:"WORLDFORGE_PEER_TIMEOUT" envDefault:"5s"`

	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisChannel string `env:"WORLDFORGE_REDIS_CHANNEL" envDefault:"worldforge:commands"`

	Storage     string        `env:"WORLDFORGE_STORAGE" envDefault:"sqlite"`
	SQLitePath  string        `env:"WORLDFORGE_SQLITE_PATH" envDefault:"worldforge.db"`
	SnapshotTTL time.Duration `env:"WORLDFORGE_SNAPSHOT_TTL" envDefault:"720h"`
}

// Load reads the given .env files (".env" when none are named; missing
// files are skipped) and then parses the environment. Variables already
// set in the environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.PeerTransport = strings.ToLower(cfg.PeerTransport)
	cfg.Storage = strings.ToLower(cfg.Storage)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.PeerTransport {
	case TransportTCP, TransportRedis:
	default:
		return fmt.Errorf("WORLDFORGE_PEER_TRANSPORT must be %q or %q, got %q", TransportTCP, TransportRedis, c.PeerTransport)
	}
	switch c.Storage {
	case StorageSQLite, StorageRedis, StorageNone:
	default:
		return fmt.Errorf("WORLDFORGE_STORAGE must be %q, %q or %q, got %q", StorageSQLite, StorageRedis, StorageNone, c.Storage)
	}
	if c.PeerPort < 1 || c.PeerPort > 65535 {
		return fmt.Errorf("WORLDFORGE_PEER_PORT out of range: %d", c.PeerPort)
	}
	if c.PeerTimeout <= 0 {
		return fmt.Errorf("WORLDFORGE_PEER_TIMEOUT must be positive")
	}
	if c.SnapshotTTL < 0 {
		return fmt.Errorf("WORLDFORGE_SNAPSHOT_TTL must not be negative")
	}
	return nil
}

// UseLLM reports whether dilemmas should be generated by the model.
func (c *Config) UseLLM() bool {
	return c.AnthropicAPIKey != ""
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
