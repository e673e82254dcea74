package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libibom-go/config"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := loadConfig(dir, "", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), path)
	assert.Equal(t, config.DefaultConfig().ListenAddr, cfg.ListenAddr)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:9000"
	cfg.Network = "regtest"
	require.NoError(t, config.SaveConfig(config.ConfigPath(dir), cfg))

	got, _, err := loadConfig(dir, "", envMap(map[string]string{
		config.EnvLogLevel: "debug",
		config.EnvFaucet:   "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", got.ListenAddr)
	assert.Equal(t, "regtest", got.Network)
	assert.Equal(t, "debug", got.LogLevel)
	assert.True(t, got.Faucet)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	_, _, err := loadConfig(dir, "", envMap(map[string]string{config.EnvListenAddr: "nope"}))
	assert.ErrorIs(t, err, config.ErrInvalidListenAddr)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("listen = ["), 0600))
	_, _, err = loadConfig(dir, bad, envMap(nil))
	assert.ErrorIs(t, err, config.ErrInvalidConfigFile)
}

func TestRun_Init(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer
	err := run(context.Background(), []string{"-datadir", dir, "-init"}, envMap(nil), &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "config.toml")

	cfg, err := config.LoadConfig(config.ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, []string{"-datadir", dir}, envMap(map[string]string{
		config.EnvListenAddr: "127.0.0.1:0",
	}), &bytes.Buffer{})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ledger.db"))
	assert.NoError(t, err)
}
