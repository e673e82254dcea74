package auth

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/google/uuid"

	"github.com/bitfsorg/libibom-go/identity"
)

// Request signature headers.
const (
	HeaderPubKey    = "X-Ibom-Pubkey"
	HeaderSignature = "X-Ibom-Signature"
	HeaderTimestamp = "X-Ibom-Timestamp"
	HeaderNonce     = "X-Ibom-Nonce"
)

// DefaultMaxSkew is the accepted distance between a request timestamp and now.
const DefaultMaxSkew = 5 * time.Minute

// Envelope carries the signature over one HTTP request.
type Envelope struct {
	PubKey    []byte // compressed secp256k1 key
	Signature []byte // DER
	Timestamp int64  // unix seconds
	Nonce     string // UUID, unique per signer within the skew window
}

// Digest returns the signed message:
//
//	SHA256(method "\n" path "\n" timestamp "\n" nonce "\n" hex(SHA256(body)))
func Digest(method, path string, timestamp int64, nonce string, body []byte) []byte {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(method))
	sb.WriteByte('\n')
	sb.WriteString(path)
	sb.WriteByte('\n')
	sb.WriteString(strconv.FormatInt(timestamp, 10))
	sb.WriteByte('\n')
	sb.WriteString(nonce)
	sb.WriteByte('\n')
	sb.WriteString(hex.EncodeToString(bsvhash.Sha256(body)))
	return bsvhash.Sha256([]byte(sb.String()))
}

// Sign produces the envelope for a request under a fresh nonce.
func Sign(priv *ec.PrivateKey, method, path string, timestamp int64, body []byte) (*Envelope, error) {
	if priv == nil {
		return nil, ErrNilKey
	}
	nonce := uuid.NewString()
	sig, err := priv.Sign(Digest(method, path, timestamp, nonce, body))
	if err != nil {
		return nil, fmt.Errorf("auth: sign request: %w", err)
	}
	return &Envelope{
		PubKey:    priv.PubKey().Compressed(),
		Signature: sig.Serialize(),
		Timestamp: timestamp,
		Nonce:     nonce,
	}, nil
}

// Apply writes the envelope into h.
func (e *Envelope) Apply(h http.Header) {
	h.Set(HeaderPubKey, hex.EncodeToString(e.PubKey))
	h.Set(HeaderSignature, hex.EncodeToString(e.Signature))
	h.Set(HeaderTimestamp, strconv.FormatInt(e.Timestamp, 10))
	h.Set(HeaderNonce, e.Nonce)
}

// FromHeaders reads an envelope from h.
func FromHeaders(h http.Header) (*Envelope, error) {
	pubHex, sigHex, tsStr := h.Get(HeaderPubKey), h.Get(HeaderSignature), h.Get(HeaderTimestamp)
	nonce := h.Get(HeaderNonce)
	if pubHex == "" || sigHex == "" || tsStr == "" || nonce == "" {
		return nil, ErrMissingSignature
	}
	pub, err := hex.DecodeString(pubHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %w", ErrInvalidSignature, err)
	}
	if _, err := uuid.Parse(nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrInvalidSignature, err)
	}
	return &Envelope{PubKey: pub, Signature: sig, Timestamp: ts, Nonce: nonce}, nil
}

// Verifier checks envelopes against the current time and remembers every
// accepted (signer, nonce) pair until its timestamp leaves the skew window.
type Verifier struct {
	MaxSkew time.Duration
	Now     func() time.Time

	mu        sync.Mutex
	seen      map[string]int64 // signer/nonce -> unix expiry
	lastPrune int64
}

// NewVerifier returns a Verifier using the wall clock.
func NewVerifier(maxSkew time.Duration) *Verifier {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}
	return &Verifier{MaxSkew: maxSkew, Now: time.Now, seen: make(map[string]int64)}
}

// Verify checks the envelope for the given request and returns the signer.
// A second request under an accepted nonce fails with ErrReplayedRequest.
func (v *Verifier) Verify(e *Envelope, method, path string, body []byte) (identity.ID, error) {
	if e == nil {
		return identity.Zero, ErrMissingSignature
	}
	now := v.Now().Unix()
	skew := int64(v.MaxSkew / time.Second)
	if e.Timestamp < now-skew || e.Timestamp > now+skew {
		return identity.Zero, fmt.Errorf("%w: %d vs %d", ErrStaleRequest, e.Timestamp, now)
	}
	pub, err := ec.PublicKeyFromBytes(e.PubKey)
	if err != nil {
		return identity.Zero, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	sig, err := ec.ParseDERSignature(e.Signature)
	if err != nil {
		return identity.Zero, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !sig.Verify(Digest(method, path, e.Timestamp, e.Nonce, body), pub) {
		return identity.Zero, ErrInvalidSignature
	}
	signer, err := identity.FromPublicKey(pub)
	if err != nil {
		return identity.Zero, err
	}
	if !v.remember(signer.String()+"/"+e.Nonce, e.Timestamp+skew, now) {
		return identity.Zero, fmt.Errorf("%w: nonce %s", ErrReplayedRequest, e.Nonce)
	}
	return signer, nil
}

// remember records key until expiry and reports whether it was new.
func (v *Verifier) remember(key string, expiry, now int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen == nil {
		v.seen = make(map[string]int64)
	}
	if now != v.lastPrune {
		for k, exp := range v.seen {
			if exp < now {
				delete(v.seen, k)
			}
		}
		v.lastPrune = now
	}
	if exp, ok := v.seen[key]; ok && exp >= now {
		return false
	}
	v.seen[key] = expiry
	return true
}
