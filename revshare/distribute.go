package revshare

import (
	"math"

	"github.com/holiman/uint256"
)

var totalBP = uint256.NewInt(TotalBP)

// Entitlement returns floor(total * bp / TotalBP).
// The product is formed in 256 bits so it cannot overflow.
func Entitlement(total uint64, bp uint16) uint64 {
	x := new(uint256.Int).SetUint64(total)
	x.Mul(x, uint256.NewInt(uint64(bp)))
	x.Div(x, totalBP)
	if !x.IsUint64() {
		return math.MaxUint64
	}
	return x.Uint64()
}

// Distribute computes every member's cumulative entitlement for total.
// Rounding dust (total minus the sum of amounts) is not assigned to anyone.
func Distribute(total uint64, t *Table) []Distribution {
	out := make([]Distribution, 0, t.Len())
	for _, e := range t.Entries() {
		out = append(out, Distribution{
			Member: e.Beneficiary,
			BP:     e.BP,
			Amount: Entitlement(total, e.BP),
		})
	}
	return out
}

// Dust returns the part of total that no member is entitled to.
func Dust(total uint64, t *Table) uint64 {
	var assigned uint64
	for _, d := range Distribute(total, t) {
		assigned += d.Amount
	}
	return total - assigned
}

// SatAdd returns a+b, clamped at math.MaxUint64.
func SatAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
