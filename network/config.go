package network

import "fmt"

// Environment variables read by ResolveConfig.
const (
	EnvRPCURL = "IBOM_RPC_URL"
	EnvAPIKey = "IBOM_API_KEY"
)

// RPCConfig holds the connection parameters for an ibomd JSON-RPC endpoint.
type RPCConfig struct {
	URL     string `json:"url"` // full endpoint, e.g. http://localhost:8080/rpc
	APIKey  string `json:"api_key"`
	Network string `json:"network"`
}

// NetworkPresets contains default endpoints for known networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:8080/rpc"},
	"testnet": {URL: "http://localhost:18080/rpc"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. CLI flags (highest priority)
//  2. Environment variables (IBOM_RPC_URL, IBOM_API_KEY)
//  3. Network presets (lowest priority, regtest/testnet only)
//
// For mainnet, explicit configuration is required -- there is no preset.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v, ok := env[EnvRPCURL]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env[EnvAPIKey]; ok && v != "" {
			result.APIKey = v
		}
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.APIKey != "" {
			result.APIKey = flags.APIKey
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires an explicit endpoint (set --rpc-url or %s)", network, EnvRPCURL)
	}

	return &result, nil
}
