// Package registry records creative works, their creator share tables and
// the optional mint and pricing links attached to them.
//
// A work is keyed by (authority, work id). Only the authority may change a
// work after registration, and works are never removed.
package registry

import (
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/revshare"
)

const (
	// MaxURILen is the maximum metadata URI length in bytes.
	MaxURILen = 200

	// ProgramName seeds derived work addresses.
	ProgramName = "registry"
)

// Key identifies a work.
type Key struct {
	Authority identity.ID `json:"authority"`
	WorkID    identity.ID `json:"work_id"`
}

// Bytes returns authority || work id, the storage key.
func (k Key) Bytes() []byte {
	b := make([]byte, 0, 2*identity.Size)
	b = append(b, k.Authority[:]...)
	return append(b, k.WorkID[:]...)
}

// Address returns the derived address of the work record.
func (k Key) Address() identity.ID {
	return identity.MustDerive(ProgramName, []byte("work"), k.Authority[:], k.WorkID[:])
}

// Work is a registered work.
type Work struct {
	Authority    identity.ID    `json:"authority"`
	WorkID       identity.ID    `json:"work_id"`
	MetadataURI  string         `json:"metadata_uri"`
	Fingerprint  identity.ID    `json:"fingerprint"` // content hash
	Creators     revshare.Table `json:"creators"`
	RegisteredAt int64          `json:"registered_at"`
	Version      uint32         `json:"version"`
	LinkedMint   *identity.ID   `json:"linked_mint,omitempty"`
	Collection   *identity.ID   `json:"collection,omitempty"`
	PaymentAsset *identity.ID   `json:"payment_asset,omitempty"`
	Price        *uint64        `json:"price,omitempty"`
}

// Key returns the work's key.
func (w *Work) Key() Key { return Key{Authority: w.Authority, WorkID: w.WorkID} }

// Address returns the derived address of the work record.
func (w *Work) Address() identity.ID { return w.Key().Address() }

// WorkParams are the caller-supplied fields of a registration.
type WorkParams struct {
	WorkID      identity.ID      `json:"work_id"`
	MetadataURI string           `json:"metadata_uri"`
	Fingerprint identity.ID      `json:"fingerprint"`
	Creators    []revshare.Entry `json:"creators"`
}

// UpdateParams replace the mutable descriptive fields of a work.
type UpdateParams struct {
	MetadataURI string           `json:"metadata_uri"`
	Fingerprint identity.ID      `json:"fingerprint"`
	Creators    []revshare.Entry `json:"creators"`
}
