package revshare

import (
	"encoding/json"
	"fmt"

	"github.com/bitfsorg/libibom-go/identity"
)

// Claim is a member's cumulative paid amount.
type Claim struct {
	Member identity.ID `json:"member"`
	Paid   uint64      `json:"paid"`
}

// Ledger records how much each member of a pool has been paid so far.
// A member without a row has been paid nothing. Rows are never removed.
type Ledger struct {
	claims [MaxEntries]Claim
	n      uint8
}

// Len returns the number of members that have claimed at least once.
func (l *Ledger) Len() int { return int(l.n) }

// Claims returns a copy of the rows in first-claim order.
func (l *Ledger) Claims() []Claim {
	out := make([]Claim, l.n)
	copy(out, l.claims[:l.n])
	return out
}

// Paid returns the cumulative amount paid to member, 0 if never paid.
func (l *Ledger) Paid(member identity.ID) uint64 {
	for i := 0; i < int(l.n); i++ {
		if l.claims[i].Member == member {
			return l.claims[i].Paid
		}
	}
	return 0
}

// Record adds amount to member's cumulative paid figure, appending a row on
// the first payment. The addition saturates.
func (l *Ledger) Record(member identity.ID, amount uint64) error {
	for i := 0; i < int(l.n); i++ {
		if l.claims[i].Member == member {
			l.claims[i].Paid = SatAdd(l.claims[i].Paid, amount)
			return nil
		}
	}
	if int(l.n) == MaxEntries {
		return fmt.Errorf("%w: %s", ErrLedgerFull, member.Short())
	}
	l.claims[l.n] = Claim{Member: member, Paid: amount}
	l.n++
	return nil
}

// Total returns the saturating sum of all paid amounts.
func (l *Ledger) Total() uint64 {
	var total uint64
	for i := 0; i < int(l.n); i++ {
		total = SatAdd(total, l.claims[i].Paid)
	}
	return total
}

// MarshalJSON encodes the ledger as its list of claims.
func (l Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Claims())
}

// UnmarshalJSON decodes a list of claims, rejecting duplicates and overflow.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var claims []Claim
	if err := json.Unmarshal(data, &claims); err != nil {
		return err
	}
	if len(claims) > MaxEntries {
		return fmt.Errorf("%w: %d claims", ErrInvalidLedgerData, len(claims))
	}
	var decoded Ledger
	for i, c := range claims {
		for j := 0; j < i; j++ {
			if claims[j].Member == c.Member {
				return fmt.Errorf("%w: duplicate member %s", ErrInvalidLedgerData, c.Member.Short())
			}
		}
		decoded.claims[i] = c
	}
	decoded.n = uint8(len(claims))
	*l = decoded
	return nil
}
