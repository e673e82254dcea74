package api

import (
	"encoding/json"

	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/revshare"
)

// JSONRPCVersion is the only protocol version accepted.
const JSONRPCVersion = "2.0"

// RPC method names.
const (
	MethodRegister   = "registry.register"
	MethodUpdate     = "registry.update"
	MethodLinkMint   = "registry.linkMint"
	MethodSetPricing = "registry.setPricing"
	MethodGetWork    = "registry.getWork"
	MethodListWorks  = "registry.listWorks"

	MethodInitPool  = "splitter.initPool"
	MethodFund      = "splitter.fund"
	MethodClaim     = "splitter.claim"
	MethodGetPool   = "splitter.getPool"
	MethodListPools = "splitter.listPools"
	MethodClaimable = "splitter.claimable"

	MethodBalance = "vault.balance"
	MethodCredit  = "vault.credit"
	MethodWhoami  = "auth.whoami"
)

// Request is a JSON-RPC 2.0 request. Params is a single object.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// ErrorData names the ledger error code behind an Error.
type ErrorData struct {
	Name string `json:"name"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data != nil && e.Data.Name != "" {
		return e.Data.Name + ": " + e.Message
	}
	return e.Message
}

// RegisterParams are the params of registry.register. The caller is the authority.
type RegisterParams struct {
	WorkID      identity.ID      `json:"work_id"`
	MetadataURI string           `json:"metadata_uri"`
	Fingerprint identity.ID      `json:"fingerprint"`
	Creators    []revshare.Entry `json:"creators"`
}

// WorkRef addresses a work.
type WorkRef struct {
	Authority identity.ID `json:"authority"`
	WorkID    identity.ID `json:"work_id"`
}

// UpdateParams are the params of registry.update.
type UpdateParams struct {
	WorkRef
	MetadataURI string           `json:"metadata_uri"`
	Fingerprint identity.ID      `json:"fingerprint"`
	Creators    []revshare.Entry `json:"creators"`
}

// LinkMintParams are the params of registry.linkMint.
type LinkMintParams struct {
	WorkRef
	Mint       identity.ID  `json:"mint"`
	Collection *identity.ID `json:"collection,omitempty"`
}

// SetPricingParams are the params of registry.setPricing.
type SetPricingParams struct {
	WorkRef
	PaymentAsset *identity.ID `json:"payment_asset,omitempty"`
	Price        *uint64      `json:"price,omitempty"`
}

// ListParams select records by authority.
type ListParams struct {
	Authority identity.ID `json:"authority"`
}

// PoolRef addresses a pool.
type PoolRef struct {
	Authority identity.ID `json:"authority"`
	Work      identity.ID `json:"work"`
}

// InitPoolParams are the params of splitter.initPool. The caller is the authority.
type InitPoolParams struct {
	Work    identity.ID      `json:"work"`
	Asset   *identity.ID     `json:"asset,omitempty"`
	Members []revshare.Entry `json:"members"`
}

// FundParams are the params of splitter.fund.
type FundParams struct {
	PoolRef
	Amount uint64 `json:"amount"`
}

// ClaimParams are the params of splitter.claim. Asset is omitted for native pools.
type ClaimParams struct {
	PoolRef
	Asset *identity.ID `json:"asset,omitempty"`
}

// ClaimableParams are the params of splitter.claimable. Member defaults to the caller.
type ClaimableParams struct {
	PoolRef
	Member *identity.ID `json:"member,omitempty"`
}

// BalanceParams are the params of vault.balance and vault.credit. Account
// defaults to the caller and Asset to the native asset.
type BalanceParams struct {
	Account *identity.ID `json:"account,omitempty"`
	Asset   *identity.ID `json:"asset,omitempty"`
	Amount  uint64       `json:"amount,omitempty"`
}

// BalanceResult is returned by vault.balance and vault.credit.
type BalanceResult struct {
	Account identity.ID `json:"account"`
	Asset   identity.ID `json:"asset"`
	Balance uint64      `json:"balance"`
}

// WhoamiResult is returned by auth.whoami.
type WhoamiResult struct {
	Identity identity.ID `json:"identity"`
}
