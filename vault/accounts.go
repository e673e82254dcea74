// Package vault keeps account balances and the custody accounts that only a
// registered program may pay out of.
//
// Balances are keyed by (account, asset). The native asset is identity.Zero.
// A custody account is a program-derived identity recorded with its owning
// program; ordinary transfers may credit it but never debit it.
package vault

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/store"
)

// Native is the asset identifier of the native currency.
var Native = identity.Zero

// Accounts reads and writes balances inside one store transaction.
type Accounts struct {
	tx store.Tx
}

// New binds an Accounts view to tx.
func New(tx store.Tx) *Accounts {
	return &Accounts{tx: tx}
}

func balanceKey(account, asset identity.ID) []byte {
	k := make([]byte, 0, 2*identity.Size)
	k = append(k, account[:]...)
	return append(k, asset[:]...)
}

// Balance returns the balance of account in asset.
func (a *Accounts) Balance(account, asset identity.ID) (uint64, error) {
	v, err := a.tx.Get(store.Balances, balanceKey(account, asset))
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("%w: %d bytes for %s", ErrInvalidBalanceData, len(v), account.Short())
	}
	return binary.BigEndian.Uint64(v), nil
}

func (a *Accounts) setBalance(account, asset identity.ID, amount uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], amount)
	return a.tx.Put(store.Balances, balanceKey(account, asset), buf[:])
}

// Credit adds amount to account. It is the entry point for funds arriving
// from outside the ledger.
func (a *Accounts) Credit(account, asset identity.ID, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	bal, err := a.Balance(account, asset)
	if err != nil {
		return err
	}
	if bal > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, account.Short())
	}
	return a.setBalance(account, asset, bal+amount)
}

func (a *Accounts) move(from, to, asset identity.ID, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	fromBal, err := a.Balance(from, asset)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, fromBal, amount)
	}
	if from == to {
		return nil
	}
	toBal, err := a.Balance(to, asset)
	if err != nil {
		return err
	}
	if toBal > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to.Short())
	}
	if err := a.setBalance(from, asset, fromBal-amount); err != nil {
		return err
	}
	return a.setBalance(to, asset, toBal+amount)
}

// Transfer moves amount of asset between two accounts. The source must not
// be a custody account.
func (a *Accounts) Transfer(from, to, asset identity.ID, amount uint64) error {
	owner, held, err := a.CustodyOwner(from)
	if err != nil {
		return err
	}
	if held {
		return fmt.Errorf("%w: %s owned by %q", ErrCustodyAccount, from.Short(), owner)
	}
	return a.move(from, to, asset, amount)
}

// OpenCustody records the account derived by p from seeds as owned by p.
func (a *Accounts) OpenCustody(p *Program, seeds ...[]byte) (identity.ID, error) {
	addr, err := p.Address(seeds...)
	if err != nil {
		return identity.Zero, err
	}
	existing, err := a.tx.Get(store.Custody, addr[:])
	if err != nil {
		return identity.Zero, err
	}
	if existing != nil {
		return identity.Zero, fmt.Errorf("%w: %s", ErrCustodyExists, addr.Short())
	}
	if err := a.tx.Put(store.Custody, addr[:], []byte(p.name)); err != nil {
		return identity.Zero, err
	}
	return addr, nil
}

// CustodyOwner returns the program name owning account, if any.
func (a *Accounts) CustodyOwner(account identity.ID) (string, bool, error) {
	v, err := a.tx.Get(store.Custody, account[:])
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

// Release pays amount of asset out of p's custody account for seeds.
// Only the program that opened the account can release from it.
func (a *Accounts) Release(p *Program, seeds [][]byte, to, asset identity.ID, amount uint64) error {
	addr, err := p.Address(seeds...)
	if err != nil {
		return err
	}
	owner, held, err := a.CustodyOwner(addr)
	if err != nil {
		return err
	}
	if !held {
		return fmt.Errorf("%w: %s", ErrCustodyNotFound, addr.Short())
	}
	if owner != p.name {
		return fmt.Errorf("%w: %s owned by %q", ErrNotCustodian, addr.Short(), owner)
	}
	return a.move(addr, to, asset, amount)
}
