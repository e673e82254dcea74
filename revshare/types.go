// Package revshare holds the share tables and claim ledgers behind work
// ownership and revenue pools.
//
// Shares are expressed in basis points (bp), where TotalBP (10000) is the
// whole. A table holds at most MaxEntries rows and is only constructible
// through NewTable, so every Table value in circulation is valid.
package revshare

import "github.com/bitfsorg/libibom-go/identity"

const (
	// MaxEntries is the capacity of a share table and a claim ledger.
	MaxEntries = 10

	// TotalBP is the basis-point total every table must reach.
	TotalBP = 10000
)

// Entry is one beneficiary row of a share table.
type Entry struct {
	Beneficiary identity.ID `json:"beneficiary"`
	BP          uint16      `json:"bp"`
}

// Table is a validated, fixed-capacity share table.
// The zero value is an empty table and is not valid for registration.
type Table struct {
	entries [MaxEntries]Entry
	n       uint8
}

// Len returns the number of rows.
func (t *Table) Len() int { return int(t.n) }

// Entries returns a copy of the rows in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, t.n)
	copy(out, t.entries[:t.n])
	return out
}

// Lookup returns the basis points held by id.
func (t *Table) Lookup(id identity.ID) (uint16, bool) {
	for i := 0; i < int(t.n); i++ {
		if t.entries[i].Beneficiary == id {
			return t.entries[i].BP, true
		}
	}
	return 0, false
}

// Sum returns the basis-point total of the table.
func (t *Table) Sum() uint32 {
	var sum uint32
	for i := 0; i < int(t.n); i++ {
		sum += uint32(t.entries[i].BP)
	}
	return sum
}

// Distribution is one member's computed entitlement.
type Distribution struct {
	Member identity.ID `json:"member"`
	BP     uint16      `json:"bp"`
	Amount uint64      `json:"amount"`
}
