package ledger

import (
	"context"

	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/registry"
	"github.com/bitfsorg/libibom-go/splitter"
	"github.com/bitfsorg/libibom-go/store"
	"github.com/bitfsorg/libibom-go/vault"
)

// Work returns the work at key.
func (l *Ledger) Work(ctx context.Context, key registry.Key) (*registry.Work, error) {
	var w *registry.Work
	err := l.view(ctx, func(tx store.Tx) error {
		var err error
		w, err = registry.New(tx).Get(key)
		return err
	})
	return w, err
}

// Works returns every work registered by authority.
func (l *Ledger) Works(ctx context.Context, authority identity.ID) ([]*registry.Work, error) {
	var works []*registry.Work
	err := l.view(ctx, func(tx store.Tx) error {
		var err error
		works, err = registry.New(tx).ListByAuthority(authority)
		return err
	})
	return works, err
}

// Pool returns the pool at key.
func (l *Ledger) Pool(ctx context.Context, key splitter.Key) (*splitter.Pool, error) {
	var p *splitter.Pool
	err := l.view(ctx, func(tx store.Tx) error {
		var err error
		p, err = splitter.New(tx).Get(key)
		return err
	})
	return p, err
}

// Pools returns every pool created by authority.
func (l *Ledger) Pools(ctx context.Context, authority identity.ID) ([]*splitter.Pool, error) {
	var pools []*splitter.Pool
	err := l.view(ctx, func(tx store.Tx) error {
		var err error
		pools, err = splitter.New(tx).ListByAuthority(authority)
		return err
	})
	return pools, err
}

// Claimable previews member's position in a pool.
func (l *Ledger) Claimable(ctx context.Context, member identity.ID, key splitter.Key) (*splitter.MemberStatement, error) {
	var st *splitter.MemberStatement
	err := l.view(ctx, func(tx store.Tx) error {
		var err error
		st, err = splitter.New(tx).Claimable(member, key)
		return err
	})
	return st, err
}

// Balance returns account's balance in asset.
func (l *Ledger) Balance(ctx context.Context, account, asset identity.ID) (uint64, error) {
	var bal uint64
	err := l.view(ctx, func(tx store.Tx) error {
		var err error
		bal, err = vault.New(tx).Balance(account, asset)
		return err
	})
	return bal, err
}
