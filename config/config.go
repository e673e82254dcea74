// Package config loads and saves the ibomd daemon configuration.
//
// The file is TOML. Keys missing from the file keep their defaults, unknown
// keys are ignored, and IBOM_* environment variables override both.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables read by ApplyEnv.
const (
	EnvDataDir    = "IBOM_DATA_DIR"
	EnvListenAddr = "IBOM_LISTEN_ADDR"
	EnvLogLevel   = "IBOM_LOG_LEVEL"
	EnvAPIKey     = "IBOM_API_KEY"
	EnvFaucet     = "IBOM_FAUCET"
)

const configHeader = "# ibomd configuration\n\n"

// Config is the daemon configuration.
type Config struct {
	DataDir             string `toml:"datadir"`
	ListenAddr          string `toml:"listen"`
	Network             string `toml:"network"`
	LogLevel            string `toml:"loglevel"`
	LogFile             string `toml:"logfile"`
	LogMaxSizeMB        int    `toml:"log_max_size_mb"`
	MetricsEnabled      bool   `toml:"metrics"`
	APIKey              string `toml:"api_key"`
	Faucet              bool   `toml:"faucet"` // exposes ledger.credit over RPC
	MaxClockSkewSeconds int    `toml:"max_clock_skew_seconds"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataDir:             DefaultDataDir(),
		ListenAddr:          ":8080",
		Network:             "mainnet",
		LogLevel:            "info",
		LogFile:             "",
		LogMaxSizeMB:        100,
		MetricsEnabled:      true,
		MaxClockSkewSeconds: 300,
	}
}

// DefaultDataDir returns ~/.ibom, or .ibom in the working directory when the
// home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ibom"
	}
	return filepath.Join(home, ".ibom")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

// DBPath returns the ledger database path inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// MaxClockSkew returns the request signature skew as a duration.
func (c Config) MaxClockSkew() time.Duration {
	return time.Duration(c.MaxClockSkewSeconds) * time.Second
}

// LoadConfig reads path over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return cfg, fmt.Errorf("%w: %s", ErrInvalidConfigFile, perr.Message)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(configHeader)
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// ApplyEnv overrides cfg from environment variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDataDir)); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(getenv(EnvListenAddr)); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvFaucet)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Faucet = b
		}
	}
}
