package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libibom-go/identity"
)

func makeID(seed byte) identity.ID {
	var id identity.ID
	for i := range id {
		id[i] = seed
	}
	return id
}

func fixedVerifier(now time.Time) *Verifier {
	v := NewVerifier(time.Minute)
	v.Now = func() time.Time { return now }
	return v
}

func TestRequireAuthority(t *testing.T) {
	assert.NoError(t, RequireAuthority(makeID(1), makeID(1)))
	assert.ErrorIs(t, RequireAuthority(makeID(1), makeID(2)), ErrUnauthorized)
	assert.ErrorIs(t, RequireAuthority(makeID(1), identity.Zero), ErrUnauthorized)
}

func TestCallerContext(t *testing.T) {
	_, ok := CallerFrom(context.Background())
	assert.False(t, ok)

	ctx := WithCaller(context.Background(), makeID(7))
	id, ok := CallerFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, makeID(7), id)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)
	body := []byte(`{"jsonrpc":"2.0"}`)

	env, err := Sign(priv, "post", "/rpc", now.Unix(), body)
	require.NoError(t, err)

	h := http.Header{}
	env.Apply(h)
	parsed, err := FromHeaders(h)
	require.NoError(t, err)
	assert.Equal(t, env, parsed)

	caller, err := fixedVerifier(now).Verify(parsed, "POST", "/rpc", body)
	require.NoError(t, err)
	want, err := identity.FromPublicKey(priv.PubKey())
	require.NoError(t, err)
	assert.Equal(t, want, caller)
}

func TestVerify_Rejects(t *testing.T) {
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	other, err := ec.NewPrivateKey()
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)
	body := []byte("payload")

	good, err := Sign(priv, "POST", "/rpc", now.Unix(), body)
	require.NoError(t, err)

	tests := []struct {
		name    string
		env     func() *Envelope
		path    string
		body    []byte
		wantErr error
	}{
		{"tampered body", func() *Envelope { return good }, "/rpc", []byte("payload2"), ErrInvalidSignature},
		{"other path", func() *Envelope { return good }, "/admin", body, ErrInvalidSignature},
		{"swapped key", func() *Envelope {
			e := *good
			e.PubKey = other.PubKey().Compressed()
			return &e
		}, "/rpc", body, ErrInvalidSignature},
		{"garbage key", func() *Envelope {
			e := *good
			e.PubKey = []byte{0x02, 0x01}
			return &e
		}, "/rpc", body, ErrInvalidPublicKey},
		{"garbage signature", func() *Envelope {
			e := *good
			e.Signature = []byte{0x30, 0x01}
			return &e
		}, "/rpc", body, ErrInvalidSignature},
		{"too old", func() *Envelope {
			e, err := Sign(priv, "POST", "/rpc", now.Add(-2*time.Minute).Unix(), body)
			require.NoError(t, err)
			return e
		}, "/rpc", body, ErrStaleRequest},
		{"from the future", func() *Envelope {
			e, err := Sign(priv, "POST", "/rpc", now.Add(2*time.Minute).Unix(), body)
			require.NoError(t, err)
			return e
		}, "/rpc", body, ErrStaleRequest},
		{"nil", func() *Envelope { return nil }, "/rpc", body, ErrMissingSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixedVerifier(now).Verify(tt.env(), "POST", tt.path, tt.body)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFromHeaders_Errors(t *testing.T) {
	_, err := FromHeaders(http.Header{})
	assert.ErrorIs(t, err, ErrMissingSignature)

	h := http.Header{}
	h.Set(HeaderPubKey, "zz")
	h.Set(HeaderSignature, "00")
	h.Set(HeaderTimestamp, "1")
	_, err = FromHeaders(h)
	assert.ErrorIs(t, err, ErrMissingSignature, "nonce header is required")

	h.Set(HeaderNonce, uuid.NewString())
	_, err = FromHeaders(h)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	h.Set(HeaderPubKey, "02")
	h.Set(HeaderTimestamp, "soon")
	_, err = FromHeaders(h)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	h.Set(HeaderTimestamp, "1")
	h.Set(HeaderNonce, "not-a-uuid")
	_, err = FromHeaders(h)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RejectsReplay(t *testing.T) {
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)
	body := []byte(`{"method":"splitter.fund"}`)
	v := fixedVerifier(now)

	env, err := Sign(priv, "POST", "/rpc", now.Unix(), body)
	require.NoError(t, err)
	_, err = v.Verify(env, "POST", "/rpc", body)
	require.NoError(t, err)

	_, err = v.Verify(env, "POST", "/rpc", body)
	assert.ErrorIs(t, err, ErrReplayedRequest)

	// A fresh signature over the same body carries a new nonce.
	again, err := Sign(priv, "POST", "/rpc", now.Unix(), body)
	require.NoError(t, err)
	assert.NotEqual(t, env.Nonce, again.Nonce)
	_, err = v.Verify(again, "POST", "/rpc", body)
	assert.NoError(t, err)
}

func TestVerify_NonceScopedToSigner(t *testing.T) {
	alice, err := ec.NewPrivateKey()
	require.NoError(t, err)
	bob, err := ec.NewPrivateKey()
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)
	body := []byte("payload")
	v := fixedVerifier(now)

	a, err := Sign(alice, "POST", "/rpc", now.Unix(), body)
	require.NoError(t, err)
	_, err = v.Verify(a, "POST", "/rpc", body)
	require.NoError(t, err)

	// Same nonce under another key is a different pair.
	sig, err := bob.Sign(Digest("POST", "/rpc", now.Unix(), a.Nonce, body))
	require.NoError(t, err)
	b := &Envelope{PubKey: bob.PubKey().Compressed(), Signature: sig.Serialize(), Timestamp: now.Unix(), Nonce: a.Nonce}
	_, err = v.Verify(b, "POST", "/rpc", body)
	assert.NoError(t, err)
}

func TestVerify_ForgetsExpiredNonces(t *testing.T) {
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)
	body := []byte("payload")
	v := fixedVerifier(now)

	env, err := Sign(priv, "POST", "/rpc", now.Unix(), body)
	require.NoError(t, err)
	_, err = v.Verify(env, "POST", "/rpc", body)
	require.NoError(t, err)

	// Once the timestamp is outside the window the request is stale, and
	// the nonce entry is dropped.
	v.Now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = v.Verify(env, "POST", "/rpc", body)
	assert.ErrorIs(t, err, ErrStaleRequest)

	fresh, err := Sign(priv, "POST", "/rpc", now.Add(2*time.Minute).Unix(), body)
	require.NoError(t, err)
	_, err = v.Verify(fresh, "POST", "/rpc", body)
	require.NoError(t, err)
	v.mu.Lock()
	defer v.mu.Unlock()
	assert.Len(t, v.seen, 1)
}

func TestSign_NilKey(t *testing.T) {
	_, err := Sign(nil, "POST", "/rpc", 0, nil)
	assert.ErrorIs(t, err, ErrNilKey)
}
