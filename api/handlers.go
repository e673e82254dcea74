package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/registry"
	"github.com/bitfsorg/libibom-go/splitter"
	"github.com/bitfsorg/libibom-go/vault"
)

// method is one RPC method. caller is nil for unsigned requests; signed
// methods are never invoked without one.
type method struct {
	signed bool
	call   func(ctx context.Context, caller *identity.ID, params json.RawMessage) (any, error)
}

func (s *Server) methodTable() map[string]method {
	return map[string]method{
		MethodRegister:   {signed: true, call: s.register},
		MethodUpdate:     {signed: true, call: s.update},
		MethodLinkMint:   {signed: true, call: s.linkMint},
		MethodSetPricing: {signed: true, call: s.setPricing},
		MethodGetWork:    {call: s.getWork},
		MethodListWorks:  {call: s.listWorks},
		MethodInitPool:   {signed: true, call: s.initPool},
		MethodFund:       {signed: true, call: s.fund},
		MethodClaim:      {signed: true, call: s.claim},
		MethodGetPool:    {call: s.getPool},
		MethodListPools:  {call: s.listPools},
		MethodClaimable:  {call: s.claimable},
		MethodBalance:    {call: s.balance},
		MethodCredit:     {signed: true, call: s.credit},
		MethodWhoami:     {signed: true, call: s.whoami},
	}
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, &Error{Code: CodeInvalidRequest, Message: err.Error()})
		return
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, &Error{Code: CodeParseError, Message: "invalid JSON payload"})
		return
	}
	if req.JSONRPC != JSONRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, &Error{Code: CodeInvalidRequest, Message: "unsupported jsonrpc version"})
		return
	}
	m, ok := s.methods[req.Method]
	if !ok {
		writeError(w, http.StatusOK, req.ID, &Error{Code: CodeMethodNotFound, Message: "method not found: " + req.Method})
		return
	}

	var caller *identity.ID
	if id, ok := auth.CallerFrom(r.Context()); ok {
		caller = &id
	}
	if m.signed && caller == nil {
		e := errorObject(ErrSignatureRequired)
		writeError(w, httpStatus(e), req.ID, e)
		return
	}

	result, err := m.call(r.Context(), caller, req.Params)
	if err != nil {
		e := errorObject(err)
		if e.Code == CodeInternalError {
			s.log.ErrorContext(r.Context(), "rpc failed",
				"method", req.Method,
				"error", err.Error(),
				"request_id", RequestIDFrom(r.Context()),
			)
		}
		writeError(w, httpStatus(e), req.ID, e)
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, &Error{Code: CodeInternalError, Message: "encode result"})
		return
	}
	id := req.ID
	if id == nil {
		id = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, Response{JSONRPC: JSONRPCVersion, ID: id, Result: raw})
}

func decodeParams(params json.RawMessage, v any) error {
	if len(bytes.TrimSpace(params)) == 0 {
		return invalidParams(errors.New("params required"))
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalidParams(err)
	}
	return nil
}

// orCaller returns id when set, otherwise the caller.
func orCaller(id *identity.ID, caller *identity.ID) (identity.ID, error) {
	switch {
	case id != nil:
		return *id, nil
	case caller != nil:
		return *caller, nil
	}
	return identity.Zero, ErrSignatureRequired
}

func (s *Server) register(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p RegisterParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.ledger.RegisterWork(ctx, *caller, registry.WorkParams{
		WorkID:      p.WorkID,
		MetadataURI: p.MetadataURI,
		Fingerprint: p.Fingerprint,
		Creators:    p.Creators,
	})
}

func (s *Server) update(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p UpdateParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.ledger.UpdateWork(ctx, *caller, p.key(), registry.UpdateParams{
		MetadataURI: p.MetadataURI,
		Fingerprint: p.Fingerprint,
		Creators:    p.Creators,
	})
}

func (s *Server) linkMint(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p LinkMintParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.ledger.LinkMint(ctx, *caller, p.key(), p.Mint, p.Collection)
}

func (s *Server) setPricing(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p SetPricingParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.ledger.SetPricing(ctx, *caller, p.key(), p.PaymentAsset, p.Price)
}

func (s *Server) getWork(ctx context.Context, _ *identity.ID, raw json.RawMessage) (any, error) {
	var p WorkRef
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.ledger.Work(ctx, p.key())
}

func (s *Server) listWorks(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	authority, err := s.listAuthority(caller, raw)
	if err != nil {
		return nil, err
	}
	works, err := s.ledger.Works(ctx, authority)
	if err != nil {
		return nil, err
	}
	if works == nil {
		works = []*registry.Work{}
	}
	return works, nil
}

func (s *Server) initPool(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p InitPoolParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.ledger.InitPool(ctx, *caller, p.Work, p.Asset, p.Members)
}

func (s *Server) fund(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p FundParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.ledger.Fund(ctx, *caller, p.key(), p.Amount)
}

func (s *Server) claim(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p ClaimParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	mode := splitter.NativeClaim()
	if p.Asset != nil {
		mode = splitter.AssetClaim(*p.Asset)
	}
	return s.ledger.Claim(ctx, *caller, p.key(), mode)
}

func (s *Server) getPool(ctx context.Context, _ *identity.ID, raw json.RawMessage) (any, error) {
	var p PoolRef
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.ledger.Pool(ctx, p.key())
}

func (s *Server) listPools(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	authority, err := s.listAuthority(caller, raw)
	if err != nil {
		return nil, err
	}
	pools, err := s.ledger.Pools(ctx, authority)
	if err != nil {
		return nil, err
	}
	if pools == nil {
		pools = []*splitter.Pool{}
	}
	return pools, nil
}

func (s *Server) claimable(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p ClaimableParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	member, err := orCaller(p.Member, caller)
	if err != nil {
		return nil, err
	}
	return s.ledger.Claimable(ctx, member, p.key())
}

func (s *Server) balance(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p BalanceParams
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
	}
	account, err := orCaller(p.Account, caller)
	if err != nil {
		return nil, err
	}
	asset := vault.Native
	if p.Asset != nil {
		asset = *p.Asset
	}
	bal, err := s.ledger.Balance(ctx, account, asset)
	if err != nil {
		return nil, err
	}
	return BalanceResult{Account: account, Asset: asset, Balance: bal}, nil
}

func (s *Server) credit(ctx context.Context, caller *identity.ID, raw json.RawMessage) (any, error) {
	var p BalanceParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	account, _ := orCaller(p.Account, caller)
	asset := vault.Native
	if p.Asset != nil {
		asset = *p.Asset
	}
	bal, err := s.ledger.Credit(ctx, account, asset, p.Amount)
	if err != nil {
		return nil, err
	}
	return BalanceResult{Account: account, Asset: asset, Balance: bal}, nil
}

func (s *Server) whoami(_ context.Context, caller *identity.ID, _ json.RawMessage) (any, error) {
	return WhoamiResult{Identity: *caller}, nil
}

func (s *Server) listAuthority(caller *identity.ID, raw json.RawMessage) (identity.ID, error) {
	var p ListParams
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := decodeParams(raw, &p); err != nil {
			return identity.Zero, err
		}
	}
	if p.Authority.IsZero() {
		return orCaller(nil, caller)
	}
	return p.Authority, nil
}

func (r WorkRef) key() registry.Key { return registry.Key{Authority: r.Authority, WorkID: r.WorkID} }

func (r PoolRef) key() splitter.Key { return splitter.Key{Authority: r.Authority, Work: r.Work} }
