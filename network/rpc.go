package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libibom-go/api"
	"github.com/bitfsorg/libibom-go/auth"
)

// Client is a JSON-RPC 2.0 client for ibomd. Every request is signed when
// the client holds a key, so the server sees the key's identity as caller.
type Client struct {
	url    string
	path   string
	apiKey string
	signer *ec.PrivateKey
	client *http.Client
	nextID atomic.Int64
	now    func() time.Time
}

// NewClient creates a client for cfg. signer may be nil for read-only use.
func NewClient(cfg RPCConfig, signer *ec.PrivateKey) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("network: invalid endpoint %q", cfg.URL)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return &Client{
		url:    cfg.URL,
		path:   path,
		apiKey: cfg.APIKey,
		signer: signer,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		now: time.Now,
	}, nil
}

// Signed reports whether the client signs its requests.
func (c *Client) Signed() bool { return c.signer != nil }

// Call invokes a JSON-RPC method on ibomd and decodes the result into result.
//
// If result is nil the response result is discarded. Call returns
// ErrConnectionFailed if the HTTP exchange fails, ErrAuthFailed on HTTP 401,
// ErrInvalidResponse if the response cannot be decoded, and an error
// wrapping both ErrRPC and the *api.Error when the server reports one.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	id := c.nextID.Add(1)
	reqBody := api.Request{
		JSONRPC: api.JSONRPCVersion,
		ID:      json.RawMessage(strconv.FormatInt(id, 10)),
		Method:  method,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("network: marshal params: %w", err)
		}
		reqBody.Params = raw
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("network: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("network: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(api.HeaderAPIKey, c.apiKey)
	}
	if c.signer != nil {
		env, err := auth.Sign(c.signer, http.MethodPost, c.path, c.now().Unix(), body)
		if err != nil {
			return fmt.Errorf("network: sign request: %w", err)
		}
		env.Apply(req.Header)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		var rpcResp api.Response
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&rpcResp) == nil && rpcResp.Error != nil {
			return fmt.Errorf("%w: %w", ErrAuthFailed, rpcResp.Error)
		}
		return ErrAuthFailed
	}

	var rpcResp api.Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: HTTP %d", ErrConnectionFailed, resp.StatusCode)
		}
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %w", ErrRPC, rpcResp.Error)
	}

	var gotID int64
	if err := json.Unmarshal(rpcResp.ID, &gotID); err != nil || gotID != id {
		return fmt.Errorf("%w: response ID mismatch: expected %d, got %s",
			ErrInvalidResponse, id, string(rpcResp.ID))
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: unmarshal result: %w", ErrInvalidResponse, err)
		}
	}

	return nil
}

// ErrorName returns the ledger error code carried by err, or "" when err
// is not an RPC error.
func ErrorName(err error) string {
	var rpcErr *api.Error
	if errors.As(err, &rpcErr) && rpcErr.Data != nil {
		return rpcErr.Data.Name
	}
	return ""
}
