package network

import (
	"context"

	"github.com/bitfsorg/libibom-go/api"
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/registry"
	"github.com/bitfsorg/libibom-go/splitter"
)

func (c *Client) requireSigner() error {
	if c.signer == nil {
		return ErrNoSigner
	}
	return nil
}

// Whoami returns the identity the server derives from the client's key.
func (c *Client) Whoami(ctx context.Context) (identity.ID, error) {
	if err := c.requireSigner(); err != nil {
		return identity.Zero, err
	}
	var res api.WhoamiResult
	if err := c.Call(ctx, api.MethodWhoami, nil, &res); err != nil {
		return identity.Zero, err
	}
	return res.Identity, nil
}

// RegisterWork registers a work owned by the client's identity.
func (c *Client) RegisterWork(ctx context.Context, p api.RegisterParams) (*registry.Work, error) {
	return signedCall[registry.Work](ctx, c, api.MethodRegister, p)
}

// UpdateWork replaces a work's descriptive fields.
func (c *Client) UpdateWork(ctx context.Context, p api.UpdateParams) (*registry.Work, error) {
	return signedCall[registry.Work](ctx, c, api.MethodUpdate, p)
}

// LinkMint links a mint and optional collection to a work.
func (c *Client) LinkMint(ctx context.Context, p api.LinkMintParams) (*registry.Work, error) {
	return signedCall[registry.Work](ctx, c, api.MethodLinkMint, p)
}

// SetPricing sets a work's payment asset and price.
func (c *Client) SetPricing(ctx context.Context, p api.SetPricingParams) (*registry.Work, error) {
	return signedCall[registry.Work](ctx, c, api.MethodSetPricing, p)
}

// GetWork fetches a work.
func (c *Client) GetWork(ctx context.Context, ref api.WorkRef) (*registry.Work, error) {
	var w registry.Work
	if err := c.Call(ctx, api.MethodGetWork, ref, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWorks returns the works registered by authority.
func (c *Client) ListWorks(ctx context.Context, authority identity.ID) ([]*registry.Work, error) {
	var works []*registry.Work
	if err := c.Call(ctx, api.MethodListWorks, api.ListParams{Authority: authority}, &works); err != nil {
		return nil, err
	}
	return works, nil
}

// InitPool creates a pool owned by the client's identity.
func (c *Client) InitPool(ctx context.Context, p api.InitPoolParams) (*splitter.Pool, error) {
	return signedCall[splitter.Pool](ctx, c, api.MethodInitPool, p)
}

// Fund deposits into a pool from the client's balance.
func (c *Client) Fund(ctx context.Context, p api.FundParams) (*splitter.Pool, error) {
	return signedCall[splitter.Pool](ctx, c, api.MethodFund, p)
}

// Claim withdraws the client's unpaid entitlement from a pool.
func (c *Client) Claim(ctx context.Context, p api.ClaimParams) (*splitter.Receipt, error) {
	return signedCall[splitter.Receipt](ctx, c, api.MethodClaim, p)
}

// GetPool fetches a pool.
func (c *Client) GetPool(ctx context.Context, ref api.PoolRef) (*splitter.Pool, error) {
	var p splitter.Pool
	if err := c.Call(ctx, api.MethodGetPool, ref, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPools returns the pools created by authority.
func (c *Client) ListPools(ctx context.Context, authority identity.ID) ([]*splitter.Pool, error) {
	var pools []*splitter.Pool
	if err := c.Call(ctx, api.MethodListPools, api.ListParams{Authority: authority}, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

// Claimable previews a member's position in a pool.
func (c *Client) Claimable(ctx context.Context, p api.ClaimableParams) (*splitter.MemberStatement, error) {
	var st splitter.MemberStatement
	if err := c.Call(ctx, api.MethodClaimable, p, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Balance returns an account balance. Nil fields default to the caller and
// the native asset.
func (c *Client) Balance(ctx context.Context, p api.BalanceParams) (*api.BalanceResult, error) {
	var res api.BalanceResult
	if err := c.Call(ctx, api.MethodBalance, p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Credit asks the server faucet for funds.
func (c *Client) Credit(ctx context.Context, p api.BalanceParams) (*api.BalanceResult, error) {
	return signedCall[api.BalanceResult](ctx, c, api.MethodCredit, p)
}

func signedCall[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	if err := c.requireSigner(); err != nil {
		return nil, err
	}
	var out T
	if err := c.Call(ctx, method, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
