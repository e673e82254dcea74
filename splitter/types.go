// Package splitter implements revenue pools: a share table bound to a work,
// a custody account that collects funds for it, and a claim ledger that
// pays each member the unpaid part of its entitlement.
//
// A member's entitlement is recomputed from the pool's cumulative receipts
// on every claim:
//
//	entitlement = floor(total_received * bp / 10000)
//	payable     = entitlement - paid
//
// so claims never overpay regardless of how claims and funding interleave.
package splitter

import (
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/vault"
)

const (
	// ProgramName owns every pool custody account.
	ProgramName = "splitter"

	// PoolVersion is the version of every pool. Pools have no update operation.
	PoolVersion = 1
)

// Key identifies a pool.
type Key struct {
	Authority identity.ID `json:"authority"`
	Work      identity.ID `json:"work"`
}

// Bytes returns authority || work, the storage key.
func (k Key) Bytes() []byte {
	b := make([]byte, 0, 2*identity.Size)
	b = append(b, k.Authority[:]...)
	return append(b, k.Work[:]...)
}

func (k Key) seeds() [][]byte {
	return [][]byte{[]byte("pool"), k.Authority[:], k.Work[:]}
}

// Address returns the pool's custody account.
func (k Key) Address() identity.ID {
	return identity.MustDerive(ProgramName, k.seeds()...)
}

// Pool is a revenue pool.
type Pool struct {
	Authority     identity.ID     `json:"authority"`
	Work          identity.ID     `json:"work"`
	Asset         *identity.ID    `json:"asset,omitempty"` // nil for a native pool
	Members       revshare.Table  `json:"members"`
	TotalReceived uint64          `json:"total_received"`
	Claims        revshare.Ledger `json:"claims"`
	Version       uint32          `json:"version"`
}

// Key returns the pool's key.
func (p *Pool) Key() Key { return Key{Authority: p.Authority, Work: p.Work} }

// Address returns the pool's custody account.
func (p *Pool) Address() identity.ID { return p.Key().Address() }

// IsNative reports whether the pool holds the native asset.
func (p *Pool) IsNative() bool { return p.Asset == nil }

// AssetID returns the pool's asset, vault.Native for a native pool.
func (p *Pool) AssetID() identity.ID {
	if p.Asset == nil {
		return vault.Native
	}
	return *p.Asset
}

// ClaimMode selects which kind of funds a claim expects.
type ClaimMode struct {
	Asset *identity.ID `json:"asset,omitempty"` // nil claims native funds
}

// NativeClaim claims from a native pool.
func NativeClaim() ClaimMode { return ClaimMode{} }

// AssetClaim claims from a pool holding asset.
func AssetClaim(asset identity.ID) ClaimMode { return ClaimMode{Asset: &asset} }

// matches reports whether the mode fits the pool's kind and asset.
func (m ClaimMode) matches(p *Pool) bool {
	if p.Asset == nil || m.Asset == nil {
		return p.Asset == nil && m.Asset == nil
	}
	return *p.Asset == *m.Asset
}

// MemberStatement is one member's position in a pool.
type MemberStatement struct {
	Member      identity.ID `json:"member"`
	BP          uint16      `json:"bp"`
	Entitlement uint64      `json:"entitlement"`
	Paid        uint64      `json:"paid"`
	Payable     uint64      `json:"payable"`
}

// Receipt describes a completed claim.
type Receipt struct {
	Member identity.ID `json:"member"`
	Asset  identity.ID `json:"asset"`
	Amount uint64      `json:"amount"`
	Paid   uint64      `json:"paid"` // cumulative after this claim
	Total  uint64      `json:"total_received"`
}
