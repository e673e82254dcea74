package paymail

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libibom-go/identity"
)

// MaxPaymailResponseSize caps every body read from a Paymail host.
const MaxPaymailResponseSize = 64 << 10

// Capabilities holds the discovered Paymail host capabilities this package uses.
type Capabilities struct {
	PKI      string // URL template for public key infrastructure
	Identity string // URL template for the ibom identity capability
}

// PKIResponse holds the response from a Paymail PKI endpoint.
type PKIResponse struct {
	BSVAlias string `json:"bsvalias"`
	Handle   string `json:"handle"`
	PubKey   string `json:"pubkey"`
}

// identityResponse is the body served by the ibom identity capability.
type identityResponse struct {
	Handle   string      `json:"handle"`
	Identity identity.ID `json:"identity"`
}

// HTTPClient defines the interface for HTTP requests.
// This allows tests to mock HTTP calls.
type HTTPClient interface {
	Get(url string) (*http.Response, error)
}

// DefaultHTTPClient is the production HTTP client.
var DefaultHTTPClient HTTPClient = http.DefaultClient

type wellKnownResponse struct {
	BSVAlias     string         `json:"bsvalias"`
	Capabilities map[string]any `json:"capabilities"`
}

// Known Paymail capability keys.
const (
	capPKI     = "pki"
	capPKIFull = "6745385c3fc0"
)

// Resolver turns handles into identities.
type Resolver struct {
	HTTP HTTPClient
	DNS  DNSResolver
}

// NewResolver returns a Resolver on http.DefaultClient and a DNSSEC resolver
// at upstream ("" selects the default upstream).
func NewResolver(upstream string) *Resolver {
	return &Resolver{HTTP: DefaultHTTPClient, DNS: NewDNSSECResolver(upstream)}
}

// Resolve maps any handle form to an identity. Its signature matches
// revshare.Resolver.
func (r *Resolver) Resolve(handle string) (identity.ID, error) {
	h, err := ParseHandle(handle)
	if err != nil {
		return identity.Zero, err
	}

	switch h.Type {
	case HandleIdentity:
		return h.ID, nil
	case HandlePubKey:
		return idFromPubKey(h.PubKey)
	case HandleDNSLink:
		pub, err := ResolveDNSLinkPubKey(h.Domain, r.dns())
		if err != nil {
			return identity.Zero, err
		}
		return idFromPubKey(pub)
	default:
		return r.resolvePaymail(h.Alias, h.Domain)
	}
}

// resolvePaymail prefers the ibom identity capability and falls back to PKI.
func (r *Resolver) resolvePaymail(alias, domain string) (identity.ID, error) {
	caps, err := DiscoverCapabilities(domain, r.http())
	if err != nil {
		return identity.Zero, fmt.Errorf("%w: %w", ErrPKIResolution, err)
	}

	if caps.Identity != "" {
		var body identityResponse
		if err := getJSON(r.http(), expandTemplate(caps.Identity, alias, domain), &body); err != nil {
			return identity.Zero, fmt.Errorf("%w: %w", ErrPKIResolution, err)
		}
		if body.Identity.IsZero() {
			return identity.Zero, fmt.Errorf("%w: empty identity for %s@%s", ErrPKIResolution, alias, domain)
		}
		return body.Identity, nil
	}

	pub, err := resolvePKI(alias, domain, caps, r.http())
	if err != nil {
		return identity.Zero, err
	}
	return idFromPubKey(pub)
}

func (r *Resolver) http() HTTPClient {
	if r.HTTP == nil {
		return DefaultHTTPClient
	}
	return r.HTTP
}

func (r *Resolver) dns() DNSResolver {
	if r.DNS == nil {
		return DefaultDNSResolver
	}
	return r.DNS
}

// DiscoverCapabilities fetches .well-known/bsvalias from a domain.
func DiscoverCapabilities(domain string, client HTTPClient) (*Capabilities, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrPaymailDiscovery)
	}

	var wk wellKnownResponse
	if err := getJSON(client, "https://"+domain+"/.well-known/bsvalias", &wk); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymailDiscovery, err)
	}

	caps := &Capabilities{}
	for key, val := range wk.Capabilities {
		urlStr, ok := val.(string)
		if !ok {
			continue
		}
		switch {
		case key == BRFCIbomIdentity:
			caps.Identity = urlStr
		case key == capPKI || key == capPKIFull || strings.Contains(key, "pki"):
			caps.PKI = urlStr
		}
	}
	return caps, nil
}

// ResolvePKI resolves a Paymail alias to its compressed public key.
func ResolvePKI(alias, domain string, client HTTPClient) ([]byte, error) {
	if alias == "" || domain == "" {
		return nil, fmt.Errorf("%w: alias and domain are required", ErrPKIResolution)
	}
	caps, err := DiscoverCapabilities(domain, client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPKIResolution, err)
	}
	return resolvePKI(alias, domain, caps, client)
}

func resolvePKI(alias, domain string, caps *Capabilities, client HTTPClient) ([]byte, error) {
	if caps.PKI == "" {
		return nil, fmt.Errorf("%w: no PKI capability found for %s", ErrPKIResolution, domain)
	}

	var pki PKIResponse
	if err := getJSON(client, expandTemplate(caps.PKI, alias, domain), &pki); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPKIResolution, err)
	}
	if pki.PubKey == "" {
		return nil, fmt.Errorf("%w: empty public key in response", ErrPKIResolution)
	}

	pub, err := hex.DecodeString(pki.PubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex public key: %w", ErrInvalidPubKey, err)
	}
	if err := validateCompressedPubKey(pub); err != nil {
		return nil, err
	}
	return pub, nil
}

func expandTemplate(tmpl, alias, domain string) string {
	out := strings.ReplaceAll(tmpl, "{alias}", alias)
	return strings.ReplaceAll(out, "{domain.tld}", domain)
}

func getJSON(client HTTPClient, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPaymailResponseSize+1))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if len(body) > MaxPaymailResponseSize {
		return fmt.Errorf("response from %s exceeds %d bytes", url, MaxPaymailResponseSize)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

func idFromPubKey(pub []byte) (identity.ID, error) {
	if err := validateCompressedPubKey(pub); err != nil {
		return identity.Zero, err
	}
	key, err := ec.PublicKeyFromBytes(pub)
	if err != nil {
		return identity.Zero, fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}
	return identity.FromPublicKey(key)
}
