// Package paymail turns human beneficiary handles into ibom identities.
//
// Four handle forms are accepted: a 64-hex identity, a 66-hex compressed
// public key, a Paymail address (alias@domain) resolved through the host's
// identity or PKI capability, and a bare domain resolved through a
// DNSSEC-validated "_ibom.<domain>" TXT record of the form "ibom=<pubkey hex>".
package paymail

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bitfsorg/libibom-go/identity"
)

// HandleType is the form of a handle.
type HandleType int

const (
	// HandleIdentity is a raw identity: 64 hex chars.
	HandleIdentity HandleType = iota
	// HandlePubKey is a compressed public key: 66 hex chars, prefix 02/03.
	HandlePubKey
	// HandlePaymail is alias@domain.
	HandlePaymail
	// HandleDNSLink is a bare domain.
	HandleDNSLink
)

// String returns the human-readable name of a HandleType.
func (h HandleType) String() string {
	switch h {
	case HandleIdentity:
		return "Identity"
	case HandlePubKey:
		return "PubKey"
	case HandlePaymail:
		return "Paymail"
	case HandleDNSLink:
		return "DNSLink"
	default:
		return "Unknown"
	}
}

// Handle is a parsed beneficiary handle.
type Handle struct {
	Type   HandleType
	ID     identity.ID // HandleIdentity only
	PubKey []byte      // HandlePubKey only
	Alias  string      // HandlePaymail only
	Domain string      // HandlePaymail and HandleDNSLink
	Raw    string
}

// compressedPubKeyHexLen is the hex-encoded length of a compressed public key.
const compressedPubKeyHexLen = 66

// ParseHandle classifies s. It does no network access.
func ParseHandle(s string) (*Handle, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty handle", ErrInvalidHandle)
	}
	h := &Handle{Raw: raw}

	switch {
	case strings.Contains(raw, "@"):
		alias, domain, _ := strings.Cut(raw, "@")
		if alias == "" || domain == "" || strings.ContainsAny(domain, "@/") {
			return nil, fmt.Errorf("%w: invalid Paymail address %q", ErrInvalidHandle, raw)
		}
		h.Type = HandlePaymail
		h.Alias = alias
		h.Domain = strings.ToLower(domain)

	case isPubKeyHex(raw):
		pub, _ := hex.DecodeString(raw)
		h.Type = HandlePubKey
		h.PubKey = pub

	case len(strings.TrimPrefix(raw, "0x")) == identity.Size*2:
		id, err := identity.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidHandle, err)
		}
		h.Type = HandleIdentity
		h.ID = id

	case strings.Contains(raw, ".") && !strings.ContainsAny(raw, "/: "):
		h.Type = HandleDNSLink
		h.Domain = strings.ToLower(raw)

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
	}
	return h, nil
}

// isPubKeyHex reports whether s looks like a compressed secp256k1 public key in hex.
func isPubKeyHex(s string) bool {
	if len(s) != compressedPubKeyHexLen {
		return false
	}
	if !strings.HasPrefix(s, "02") && !strings.HasPrefix(s, "03") {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// validateCompressedPubKey checks that raw bytes represent a compressed public key.
func validateCompressedPubKey(pub []byte) error {
	if len(pub) != 33 {
		return fmt.Errorf("%w: expected 33 bytes, got %d", ErrInvalidPubKey, len(pub))
	}
	if pub[0] != 0x02 && pub[0] != 0x03 {
		return fmt.Errorf("%w: invalid prefix byte 0x%02x", ErrInvalidPubKey, pub[0])
	}
	return nil
}
