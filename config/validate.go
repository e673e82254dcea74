package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

// Networks lists the accepted network names.
var Networks = []string{"mainnet", "testnet", "regtest"}

// LogLevels lists the accepted log level names.
var LogLevels = []string{"debug", "info", "warn", "error"}

// ValidateConfig returns the first invalid field of cfg, or nil.
func ValidateConfig(cfg Config) error {
	checks := []func(Config) error{
		func(c Config) error {
			if strings.TrimSpace(c.DataDir) == "" {
				return ErrEmptyDataDir
			}
			return nil
		},
		func(c Config) error {
			if !slices.Contains(Networks, c.Network) {
				return fmt.Errorf("%w: %q", ErrInvalidNetwork, c.Network)
			}
			return nil
		},
		func(c Config) error {
			if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
			}
			return nil
		},
		func(c Config) error {
			if !slices.Contains(LogLevels, strings.ToLower(c.LogLevel)) {
				return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
			}
			return nil
		},
		func(c Config) error {
			if c.LogMaxSizeMB < 0 {
				return ErrInvalidLogSize
			}
			return nil
		},
		func(c Config) error {
			if c.MaxClockSkewSeconds <= 0 {
				return ErrInvalidClockSkew
			}
			return nil
		},
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}
