package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the process-wide configuration, read once at startup from the
// environment. Flags may override individual fields afterwards.
type Config struct {
	// APIURL is the base URL of the backend; entity collections live at
	// <APIURL>/users and <APIURL>/projects.
	APIURL string `env:"TEAMDECK_API_URL" envDefault:"http://localhost:3000/api"`

	// StateDir holds local process state: broadcast channel spools and log files.
	// Defaults to ~/.teamdeck when unset.
	StateDir string `env:"TEAMDECK_STATE_DIR"`

	// LogFile enables debug logging to the given file ("1" means
	// <StateDir>/teamdeck.log). Empty disables logging entirely.
	LogFile string `env:"TEAMDECK_LOG"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = "http://localhost:3000/api"
	}

	if strings.TrimSpace(cfg.StateDir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve state dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".teamdeck")
	}

	if cfg.LogFile == "1" {
		cfg.LogFile = filepath.Join(cfg.StateDir, "teamdeck.log")
	}

	return cfg, nil
}

// ChannelsDir is where broadcast channel spools live.
func (c Config) ChannelsDir() string {
	return filepath.Join(c.StateDir, "channels")
}
