// Package identity defines the 32-byte identifiers shared by every ledger
// record: authorities, beneficiaries, works, pools and assets.
//
// Key-backed identities are SHA256(compressed secp256k1 public key).
// Program-derived identities are hashed from a program name and a list of
// seeds, so they can never collide with a key-backed identity.
package identity

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

const (
	// Size is the byte length of an identifier.
	Size = 32

	// MaxSeeds bounds the number of seeds accepted by Derive.
	MaxSeeds = 16

	// MaxSeedLen bounds the length of a single seed accepted by Derive.
	MaxSeedLen = 32
)

// derivedMarker separates program-derived identities from key-backed ones.
const derivedMarker = "ibom/derived"

// ID is a 32-byte identifier.
type ID [Size]byte

// Zero is the all-zero identifier. It denotes the native asset.
var Zero ID

// IsZero reports whether id is the all-zero identifier.
func (id ID) IsZero() bool { return id == Zero }

// String returns the lowercase hex encoding of id.
func (id ID) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first 8 hex characters, for log lines.
func (id ID) Short() string { return id.String()[:8] }

// Bytes returns a copy of the identifier bytes.
func (id ID) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, id[:])
	return b
}

// MarshalText encodes id as hex.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex identifier.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse decodes a 64-character hex string. A leading "0x" is accepted.
func Parse(s string) (ID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != Size*2 {
		return Zero, fmt.Errorf("%w: expected %d hex chars, got %d", ErrInvalidID, Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	return FromBytes(b)
}

// FromBytes copies a 32-byte slice into an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Size {
		return id, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidID, Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// MustParse is Parse that panics. Only for constants and tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Compare orders identifiers bytewise.
func Compare(a, b ID) int { return bytes.Compare(a[:], b[:]) }

// FromPublicKey returns SHA256(compressed public key).
func FromPublicKey(pub *ec.PublicKey) (ID, error) {
	if pub == nil {
		return Zero, ErrNilPublicKey
	}
	return FromBytes(bsvhash.Sha256(pub.Compressed()))
}

// Derive computes the identity owned by program for the given seeds:
//
//	SHA256(seed_0 || ... || seed_n || program || "ibom/derived")
//
// Each seed is length-prefixed so that ("ab","c") and ("a","bc") differ.
func Derive(program string, seeds ...[]byte) (ID, error) {
	if len(seeds) > MaxSeeds {
		return Zero, fmt.Errorf("%w: %d > %d", ErrTooManySeeds, len(seeds), MaxSeeds)
	}
	var buf bytes.Buffer
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Zero, fmt.Errorf("%w: seed %d is %d bytes", ErrSeedTooLong, i, len(seed))
		}
		buf.WriteByte(byte(len(seed)))
		buf.Write(seed)
	}
	buf.WriteString(program)
	buf.WriteString(derivedMarker)
	return FromBytes(bsvhash.Sha256(buf.Bytes()))
}

// MustDerive is Derive for fixed, known-good seed sets.
func MustDerive(program string, seeds ...[]byte) ID {
	id, err := Derive(program, seeds...)
	if err != nil {
		panic(err)
	}
	return id
}
