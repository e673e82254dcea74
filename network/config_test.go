package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkPresets(t *testing.T) {
	tests := []struct {
		name    string
		network string
		url     string
	}{
		{"regtest defaults", "regtest", "http://localhost:8080/rpc"},
		{"testnet defaults", "testnet", "http://localhost:18080/rpc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, ok := NetworkPresets[tt.network]
			require.True(t, ok, "preset should exist for %s", tt.network)
			assert.Equal(t, tt.url, preset.URL)
		})
	}
}

func TestMainnetHasNoPreset(t *testing.T) {
	_, ok := NetworkPresets["mainnet"]
	assert.False(t, ok, "mainnet should not have a default preset")
}

func TestResolveConfigFlagsOverrideAll(t *testing.T) {
	flags := &RPCConfig{URL: "http://custom:9999/rpc", APIKey: "flagkey"}
	env := map[string]string{EnvRPCURL: "http://env:1/rpc", EnvAPIKey: "envkey"}
	cfg, err := ResolveConfig(flags, env, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://custom:9999/rpc", cfg.URL)
	assert.Equal(t, "flagkey", cfg.APIKey)
	assert.Equal(t, "regtest", cfg.Network)
}

func TestResolveConfigEnvOverridesPreset(t *testing.T) {
	env := map[string]string{
		EnvRPCURL: "http://env-node:8080/rpc",
		EnvAPIKey: "envkey",
	}
	cfg, err := ResolveConfig(nil, env, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://env-node:8080/rpc", cfg.URL)
	assert.Equal(t, "envkey", cfg.APIKey)
}

func TestResolveConfigPresetFallback(t *testing.T) {
	cfg, err := ResolveConfig(nil, nil, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/rpc", cfg.URL)
	assert.Empty(t, cfg.APIKey)
}

func TestResolveConfigMainnetRequiresExplicit(t *testing.T) {
	_, err := ResolveConfig(nil, nil, "mainnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mainnet")

	cfg, err := ResolveConfig(&RPCConfig{URL: "https://ibom.example/rpc"}, nil, "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "https://ibom.example/rpc", cfg.URL)
}
