// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from TRADETERM_* environment variables, optionally seeded
// from a .env file in the working directory.
type Config struct {
	WSURL            string        `env:"WS_URL" envDefault:"ws://localhost:8000/ws"`
	APIURL           string        `env:"API_URL" envDefault:"http://localhost:8000"`
	Symbol           string        `env:"SYMBOL" envDefault:"BTC-USDT"`
	LogFile          string        `env:"LOG_FILE" envDefault:"tradeterm.log"`
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT" envDefault:"15s"`
	DepthInterval    time.Duration `env:"DEPTH_INTERVAL" envDefault:"2s"`
	MaxTrades        int           `env:"MAX_TRADES" envDefault:"50"`
}

const envPrefix = "TRADETERM_"

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxTrades <= 0 {
		return Config{}, fmt.Errorf("parse env: %sMAX_TRADES must be positive, got %d", envPrefix, cfg.MaxTrades)
	}
	return cfg, nil
}
