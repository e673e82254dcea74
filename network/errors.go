package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not reach ibomd.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates ibomd rejected the API key or request signature.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrInvalidResponse indicates ibomd returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrRPC indicates ibomd answered with a JSON-RPC error object.
	ErrRPC = errors.New("network: rpc error")

	// ErrNoSigner indicates a signed call on a client without a key.
	ErrNoSigner = errors.New("network: no signing key")
)
