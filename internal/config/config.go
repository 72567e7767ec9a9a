// Package config holds the server's startup settings, loadable from an
// optional TOML file with command-line flags layered on top.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// MaxSearchDepth bounds the iterative-deepening depth a configuration may
// request; it also bounds the search recursion.
const MaxSearchDepth = 100

// Config is the full set of tunables for one server process.
type Config struct {
	// Addr is the host:port the websocket server listens on.
	Addr string `toml:"addr"`
	// TTSizeMB is the transposition table byte budget, in MiB.
	TTSizeMB int `toml:"tt_size_mb"`
	// MaxDepth caps iterative deepening; searches still run until
	// cancelled, this only bounds how deep they may go.
	MaxDepth int `toml:"max_depth"`
}

// Default returns the settings used when no file and no flags are given.
func Default() Config {
	return Config{
		Addr:     "127.0.0.1:3012",
		TTSizeMB: 100,
		MaxDepth: 99,
	}
}

// Load reads a TOML file over the defaults. An empty path skips the file
// and returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.TTSizeMB < 1 {
		return fmt.Errorf("tt_size_mb must be at least 1, got %d", c.TTSizeMB)
	}
	if c.MaxDepth < 1 || c.MaxDepth > MaxSearchDepth {
		return fmt.Errorf("max_depth must be in 1..%d, got %d", MaxSearchDepth, c.MaxDepth)
	}
	return nil
}
