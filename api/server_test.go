package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/ledger"
	"github.com/bitfsorg/libibom-go/metrics"
	"github.com/bitfsorg/libibom-go/registry"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/splitter"
	"github.com/bitfsorg/libibom-go/store"
)

type party struct {
	priv *ec.PrivateKey
	id   identity.ID
}

func newParty(t *testing.T) party {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	id, err := identity.FromPublicKey(priv.PubKey())
	require.NoError(t, err)
	return party{priv: priv, id: id}
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	l := ledger.New(store.NewMemDB(), ledger.WithFaucet(true), ledger.WithMetrics(opts.Metrics))
	srv := httptest.NewServer(NewServer(l, opts))
	t.Cleanup(srv.Close)
	return srv
}

func rpcRequest(t *testing.T, srv *httptest.Server, signer *party, method string, params any) *http.Request {
	t.Helper()
	req := Request{JSONRPC: JSONRPCVersion, ID: json.RawMessage(`1`), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		require.NoError(t, err)
		req.Params = raw
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq, err := http.NewRequest(http.MethodPost, srv.URL+RPCPath, bytes.NewReader(body))
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	if signer != nil {
		env, err := auth.Sign(signer.priv, http.MethodPost, RPCPath, time.Now().Unix(), body)
		require.NoError(t, err)
		env.Apply(httpReq.Header)
	}
	return httpReq
}

func do(t *testing.T, req *http.Request) (int, Response) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func call(t *testing.T, srv *httptest.Server, signer *party, method string, params, result any) *Error {
	t.Helper()
	_, resp := do(t, rpcRequest(t, srv, signer, method, params))
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil {
		require.NoError(t, json.Unmarshal(resp.Result, result))
	}
	return nil
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Options{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["faucet"])

	_, err = uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, err)
}

func TestWhoami(t *testing.T) {
	srv := newTestServer(t, Options{})
	alice := newParty(t)

	var got WhoamiResult
	require.Nil(t, call(t, srv, &alice, MethodWhoami, nil, &got))
	assert.Equal(t, alice.id, got.Identity)
}

func TestRegisterWorkOverRPC(t *testing.T) {
	srv := newTestServer(t, Options{})
	alice := newParty(t)
	bob := newParty(t)
	workID := identity.MustDerive("test", []byte("work"))

	params := RegisterParams{
		WorkID:      workID,
		MetadataURI: "ipfs://meta",
		Creators:    []revshare.Entry{{Beneficiary: alice.id, BP: 7000}, {Beneficiary: bob.id, BP: 3000}},
	}

	rpcErr := call(t, srv, nil, MethodRegister, params, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeUnauthorized, rpcErr.Code)

	var w registry.Work
	require.Nil(t, call(t, srv, &alice, MethodRegister, params, &w))
	assert.Equal(t, alice.id, w.Authority)
	assert.Equal(t, uint32(1), w.Version)

	rpcErr = call(t, srv, &bob, MethodUpdate, UpdateParams{
		WorkRef:  WorkRef{Authority: alice.id, WorkID: workID},
		Creators: params.Creators,
	}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeUnauthorized, rpcErr.Code)
	assert.Equal(t, ledger.CodeUnauthorized, rpcErr.Data.Name)

	var works []registry.Work
	require.Nil(t, call(t, srv, &alice, MethodListWorks, nil, &works))
	assert.Len(t, works, 1)

	rpcErr = call(t, srv, nil, MethodGetWork, WorkRef{Authority: bob.id, WorkID: workID}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeNotFound, rpcErr.Code)
	assert.Equal(t, ledger.CodeWorkNotFound, rpcErr.Data.Name)
}

func TestRejectsBadShares(t *testing.T) {
	srv := newTestServer(t, Options{})
	alice := newParty(t)

	rpcErr := call(t, srv, &alice, MethodRegister, RegisterParams{
		WorkID:   identity.MustDerive("test", []byte("w")),
		Creators: []revshare.Entry{{Beneficiary: alice.id, BP: 9999}},
	}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeRejected, rpcErr.Code)
	assert.Equal(t, ledger.CodeInvalidSharesSum, rpcErr.Data.Name)
}

func TestPoolOverRPC(t *testing.T) {
	srv := newTestServer(t, Options{})
	alice, bob, funder := newParty(t), newParty(t), newParty(t)
	work := identity.MustDerive("test", []byte("pool-work"))

	var bal BalanceResult
	require.Nil(t, call(t, srv, &funder, MethodCredit, BalanceParams{Amount: 5000}, &bal))
	assert.Equal(t, uint64(5000), bal.Balance)

	var pool splitter.Pool
	require.Nil(t, call(t, srv, &alice, MethodInitPool, InitPoolParams{
		Work:    work,
		Members: []revshare.Entry{{Beneficiary: alice.id, BP: 5000}, {Beneficiary: bob.id, BP: 5000}},
	}, &pool))
	ref := PoolRef{Authority: alice.id, Work: work}

	require.Nil(t, call(t, srv, &funder, MethodFund, FundParams{PoolRef: ref, Amount: 1000}, &pool))
	assert.Equal(t, uint64(1000), pool.TotalReceived)

	var receipt splitter.Receipt
	require.Nil(t, call(t, srv, &bob, MethodClaim, ClaimParams{PoolRef: ref}, &receipt))
	assert.Equal(t, uint64(500), receipt.Amount)

	rpcErr := call(t, srv, &bob, MethodClaim, ClaimParams{PoolRef: ref}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, ledger.CodeNothingToClaim, rpcErr.Data.Name)

	var st splitter.MemberStatement
	require.Nil(t, call(t, srv, nil, MethodClaimable, ClaimableParams{PoolRef: ref, Member: &alice.id}, &st))
	assert.Equal(t, uint64(500), st.Payable)

	require.Nil(t, call(t, srv, &bob, MethodBalance, nil, &bal))
	assert.Equal(t, uint64(500), bal.Balance)

	rpcErr = call(t, srv, &funder, MethodFund, FundParams{PoolRef: ref, Amount: 1_000_000}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeFunds, rpcErr.Code)
	assert.Equal(t, ledger.CodeInsufficientFunds, rpcErr.Data.Name)
}

func TestTamperedBodyRejected(t *testing.T) {
	srv := newTestServer(t, Options{})
	alice := newParty(t)

	req := rpcRequest(t, srv, &alice, MethodWhoami, nil)
	req.Body = io.NopCloser(strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"auth.whoami"}`))
	req.ContentLength = -1

	status, resp := do(t, req)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnauthorized, resp.Error.Code)
}

func TestStaleSignatureRejected(t *testing.T) {
	srv := newTestServer(t, Options{MaxClockSkew: time.Minute})
	alice := newParty(t)

	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"auth.whoami"}`)
	env, err := auth.Sign(alice.priv, http.MethodPost, RPCPath, time.Now().Add(-time.Hour).Unix(), body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+RPCPath, bytes.NewReader(body))
	require.NoError(t, err)
	env.Apply(req.Header)

	status, _ := do(t, req)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestReplayedFundRejected(t *testing.T) {
	srv := newTestServer(t, Options{})
	alice, funder := newParty(t), newParty(t)
	work := identity.MustDerive("test", []byte("replay"))

	require.Nil(t, call(t, srv, &funder, MethodCredit, BalanceParams{Amount: 5000}, nil))
	require.Nil(t, call(t, srv, &alice, MethodInitPool, InitPoolParams{
		Work:    work,
		Members: []revshare.Entry{{Beneficiary: alice.id, BP: 10000}},
	}, nil))
	ref := PoolRef{Authority: alice.id, Work: work}

	first := rpcRequest(t, srv, &funder, MethodFund, FundParams{PoolRef: ref, Amount: 1000})
	body, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	first.Body = io.NopCloser(bytes.NewReader(body))
	status, resp := do(t, first)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)

	for range 3 {
		replay, err := http.NewRequest(http.MethodPost, srv.URL+RPCPath, bytes.NewReader(body))
		require.NoError(t, err)
		replay.Header = first.Header.Clone()
		status, resp := do(t, replay)
		assert.Equal(t, http.StatusUnauthorized, status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeUnauthorized, resp.Error.Code)
	}

	var pool splitter.Pool
	require.Nil(t, call(t, srv, nil, MethodGetPool, ref, &pool))
	assert.Equal(t, uint64(1000), pool.TotalReceived)

	var bal BalanceResult
	require.Nil(t, call(t, srv, &funder, MethodBalance, nil, &bal))
	assert.Equal(t, uint64(4000), bal.Balance)
}

func TestAPIKey(t *testing.T) {
	srv := newTestServer(t, Options{APIKey: "sekret"})
	alice := newParty(t)

	status, resp := do(t, rpcRequest(t, srv, &alice, MethodWhoami, nil))
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, resp.Error)

	req := rpcRequest(t, srv, &alice, MethodWhoami, nil)
	req.Header.Set(HeaderAPIKey, "sekret")
	status, resp = do(t, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp.Error)
}

func TestProtocolErrors(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Post(srv.URL+RPCPath, "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeParseError, out.Error.Code)

	resp, err = http.Post(srv.URL+RPCPath, "application/json", strings.NewReader(`{"jsonrpc":"1.0","id":1,"method":"auth.whoami"}`))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, CodeInvalidRequest, out.Error.Code)

	rpcErr := call(t, srv, nil, "nope.nothing", nil, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeMethodNotFound, rpcErr.Code)

	rpcErr = call(t, srv, nil, MethodGetPool, map[string]any{"bogus": 1}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeInvalidParams, rpcErr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := metrics.NewRecorder("ibom")
	srv := newTestServer(t, Options{Metrics: rec})
	alice := newParty(t)
	require.Nil(t, call(t, srv, &alice, MethodWhoami, nil, nil))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ibom_http_requests_total{method="POST",route="/rpc",status="200"} 1`)
}
