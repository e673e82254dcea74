package splitter

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/store"
	"github.com/bitfsorg/libibom-go/vault"
)

// custodian is the capability to pay out of pool custody accounts.
var custodian = vault.MustRegisterProgram(ProgramName)

// Splitter reads and mutates pools inside one store transaction.
type Splitter struct {
	tx       store.Tx
	accounts *vault.Accounts
}

// New binds a Splitter to tx.
func New(tx store.Tx) *Splitter {
	return &Splitter{tx: tx, accounts: vault.New(tx)}
}

// Get loads the pool at key.
func (s *Splitter) Get(key Key) (*Pool, error) {
	data, err := s.tx.Get(store.Pools, key.Bytes())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrPoolNotFound, key.Authority.Short(), key.Work.Short())
	}
	return DeserializePool(data)
}

// ListByAuthority returns every pool created by authority, ordered by work.
func (s *Splitter) ListByAuthority(authority identity.ID) ([]*Pool, error) {
	var pools []*Pool
	err := s.tx.ForEachPrefix(store.Pools, authority[:], func(_, v []byte) error {
		p, err := DeserializePool(v)
		if err != nil {
			return err
		}
		pools = append(pools, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pools, nil
}

func (s *Splitter) put(p *Pool) error {
	return s.tx.Put(store.Pools, p.Key().Bytes(), SerializePool(p))
}

// InitPool creates the pool for (authority, work) and opens its custody
// account. A nil asset makes a native pool; vault.Native is not accepted as
// an alternate asset. The work is an opaque reference and need not be
// registered.
func (s *Splitter) InitPool(authority, work identity.ID, asset *identity.ID, members []revshare.Entry) (*Pool, error) {
	if asset != nil && *asset == vault.Native {
		return nil, ErrNativeAsset
	}
	key := Key{Authority: authority, Work: work}
	existing, err := s.tx.Get(store.Pools, key.Bytes())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrPoolExists, authority.Short(), work.Short())
	}
	table, err := revshare.NewTable(members)
	if err != nil {
		if errors.Is(err, revshare.ErrTooManyEntries) {
			return nil, fmt.Errorf("%w: %w", ErrTooManyMembers, err)
		}
		return nil, err
	}
	if _, err := s.accounts.OpenCustody(custodian, key.seeds()...); err != nil {
		return nil, err
	}

	p := &Pool{
		Authority: authority,
		Work:      work,
		Members:   table,
		Version:   PoolVersion,
	}
	if asset != nil {
		a := *asset
		p.Asset = &a
	}
	if err := s.put(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Fund moves amount of the pool's asset from funder into custody and adds
// it to the pool's cumulative receipts. Anyone may fund any pool.
func (s *Splitter) Fund(funder identity.ID, key Key, amount uint64) (*Pool, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	p, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Transfer(funder, p.Address(), p.AssetID(), amount); err != nil {
		return nil, err
	}
	p.TotalReceived = revshare.SatAdd(p.TotalReceived, amount)
	if err := s.put(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Claim pays member the unpaid part of its entitlement.
func (s *Splitter) Claim(member identity.ID, key Key, mode ClaimMode) (*Receipt, error) {
	p, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if !mode.matches(p) {
		return nil, fmt.Errorf("%w: pool asset %s", ErrWrongPoolKind, p.AssetID().Short())
	}
	st, err := statement(p, member)
	if err != nil {
		return nil, err
	}
	if st.Payable == 0 {
		return nil, fmt.Errorf("%w: entitled %d, paid %d", ErrNothingToClaim, st.Entitlement, st.Paid)
	}

	if err := s.accounts.Release(custodian, key.seeds(), member, p.AssetID(), st.Payable); err != nil {
		return nil, err
	}
	if err := p.Claims.Record(member, st.Payable); err != nil {
		return nil, err
	}
	if err := s.put(p); err != nil {
		return nil, err
	}
	return &Receipt{
		Member: member,
		Asset:  p.AssetID(),
		Amount: st.Payable,
		Paid:   p.Claims.Paid(member),
		Total:  p.TotalReceived,
	}, nil
}

// Claimable previews member's position without paying anything.
func (s *Splitter) Claimable(member identity.ID, key Key) (*MemberStatement, error) {
	p, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	return statement(p, member)
}

// Statement returns every member's position in p, in table order.
func Statement(p *Pool) []MemberStatement {
	out := make([]MemberStatement, 0, p.Members.Len())
	for _, e := range p.Members.Entries() {
		out = append(out, position(p, e.Beneficiary, e.BP))
	}
	return out
}

func statement(p *Pool, member identity.ID) (*MemberStatement, error) {
	bp, ok := p.Members.Lookup(member)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAMember, member.Short())
	}
	st := position(p, member, bp)
	return &st, nil
}

func position(p *Pool, member identity.ID, bp uint16) MemberStatement {
	st := MemberStatement{
		Member:      member,
		BP:          bp,
		Entitlement: revshare.Entitlement(p.TotalReceived, bp),
		Paid:        p.Claims.Paid(member),
	}
	if st.Entitlement > st.Paid {
		st.Payable = st.Entitlement - st.Paid
	}
	return st
}
