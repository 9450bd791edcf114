package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR,default=:5001"`
	// DBURL is optional; when empty the server runs on the in-memory store.
	DBURL            string        `env:"DB_URL"`
	InactivityWindow time.Duration `env:"INACTIVITY_WINDOW,default=10s"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	LogLevel         string        `env:"LOG_LEVEL,default=info"`
}

func LoadFromEnv() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen addr is required")
	}
	if c.InactivityWindow <= 0 {
		return errors.New("inactivity window must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
