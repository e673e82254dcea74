// Package ledger is the single entry point for every registry and pool
// operation. Each mutating call runs as one store transaction, so it either
// applies completely or not at all, and calls never interleave.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/logging"
	"github.com/bitfsorg/libibom-go/metrics"
	"github.com/bitfsorg/libibom-go/registry"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/splitter"
	"github.com/bitfsorg/libibom-go/store"
	"github.com/bitfsorg/libibom-go/vault"
)

// Operation names used in logs and metrics.
const (
	OpRegisterWork = "register_work"
	OpUpdateWork   = "update_work"
	OpLinkMint     = "link_mint"
	OpSetPricing   = "set_pricing"
	OpInitPool     = "init_pool"
	OpFund         = "fund"
	OpClaim        = "claim"
	OpCredit       = "credit"
)

// Ledger runs operations against a store.
type Ledger struct {
	db      store.DB
	log     *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	faucet  bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(led *Ledger) { led.log = l.With("component", "ledger") }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(led *Ledger) { led.metrics = m }
}

// WithClock sets the clock used for registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(led *Ledger) { led.now = now }
}

// WithFaucet enables Credit.
func WithFaucet(enabled bool) Option {
	return func(led *Ledger) { led.faucet = enabled }
}

// New returns a Ledger over db.
func New(db store.DB, opts ...Option) *Ledger {
	l := &Ledger{db: db, log: logging.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FaucetEnabled reports whether Credit is allowed.
func (l *Ledger) FaucetEnabled() bool { return l.faucet }

// update runs fn in one read-write transaction and records the outcome.
func (l *Ledger) update(ctx context.Context, op string, attrs []any, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := l.db.Update(fn)
	elapsed := time.Since(start)

	code := Code(err)
	l.metrics.ObserveOp(op, code, elapsed)

	attrs = append(attrs, "op", op, "duration_ms", elapsed.Milliseconds())
	switch {
	case err == nil:
		l.log.InfoContext(ctx, "operation applied", attrs...)
	case IsRejection(err):
		l.log.InfoContext(ctx, "operation rejected", append(attrs, "code", code, "error", err.Error())...)
	default:
		l.log.ErrorContext(ctx, "operation failed", append(attrs, "code", code, "error", err.Error())...)
	}
	return err
}

func (l *Ledger) view(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.db.View(fn)
}

func kind(asset *identity.ID) string {
	if asset == nil {
		return "native"
	}
	return "asset"
}

// RegisterWork registers a work owned by authority.
func (l *Ledger) RegisterWork(ctx context.Context, authority identity.ID, p registry.WorkParams) (*registry.Work, error) {
	var w *registry.Work
	attrs := []any{"authority", authority.String(), "work_id", p.WorkID.String()}
	err := l.update(ctx, OpRegisterWork, attrs, func(tx store.Tx) error {
		var err error
		w, err = registry.New(tx).Register(authority, p, l.now().Unix())
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateWork replaces a work's descriptive fields.
func (l *Ledger) UpdateWork(ctx context.Context, caller identity.ID, key registry.Key, p registry.UpdateParams) (*registry.Work, error) {
	var w *registry.Work
	attrs := []any{"caller", caller.String(), "authority", key.Authority.String(), "work_id", key.WorkID.String()}
	err := l.update(ctx, OpUpdateWork, attrs, func(tx store.Tx) error {
		var err error
		w, err = registry.New(tx).Update(caller, key, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// LinkMint links a token mint and optional collection to a work.
func (l *Ledger) LinkMint(ctx context.Context, caller identity.ID, key registry.Key, mint identity.ID, collection *identity.ID) (*registry.Work, error) {
	var w *registry.Work
	attrs := []any{"caller", caller.String(), "work_id", key.WorkID.String(), "mint", mint.String()}
	err := l.update(ctx, OpLinkMint, attrs, func(tx store.Tx) error {
		var err error
		w, err = registry.New(tx).LinkMint(caller, key, mint, collection)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// SetPricing sets a work's payment asset and price.
func (l *Ledger) SetPricing(ctx context.Context, caller identity.ID, key registry.Key, paymentAsset *identity.ID, price *uint64) (*registry.Work, error) {
	var w *registry.Work
	attrs := []any{"caller", caller.String(), "work_id", key.WorkID.String()}
	err := l.update(ctx, OpSetPricing, attrs, func(tx store.Tx) error {
		var err error
		w, err = registry.New(tx).SetPricing(caller, key, paymentAsset, price)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// InitPool creates a revenue pool owned by authority for work.
func (l *Ledger) InitPool(ctx context.Context, authority, work identity.ID, asset *identity.ID, members []revshare.Entry) (*splitter.Pool, error) {
	var p *splitter.Pool
	attrs := []any{"authority", authority.String(), "work", work.String(), "kind", kind(asset)}
	err := l.update(ctx, OpInitPool, attrs, func(tx store.Tx) error {
		var err error
		p, err = splitter.New(tx).InitPool(authority, work, asset, members)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Fund deposits amount from funder into a pool.
func (l *Ledger) Fund(ctx context.Context, funder identity.ID, key splitter.Key, amount uint64) (*splitter.Pool, error) {
	var p *splitter.Pool
	attrs := []any{"funder", funder.String(), "pool", key.Address().String(), "amount", amount}
	err := l.update(ctx, OpFund, attrs, func(tx store.Tx) error {
		var err error
		p, err = splitter.New(tx).Fund(funder, key, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.metrics.AddFunded(kind(p.Asset), amount)
	return p, nil
}

// Claim pays member its unpaid entitlement from a pool.
func (l *Ledger) Claim(ctx context.Context, member identity.ID, key splitter.Key, mode splitter.ClaimMode) (*splitter.Receipt, error) {
	var r *splitter.Receipt
	attrs := []any{"member", member.String(), "pool", key.Address().String(), "kind", kind(mode.Asset)}
	err := l.update(ctx, OpClaim, attrs, func(tx store.Tx) error {
		var err error
		r, err = splitter.New(tx).Claim(member, key, mode)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.metrics.AddClaimed(kind(mode.Asset), r.Amount)
	return r, nil
}

// Credit deposits amount into account from outside the ledger and returns
// the new balance. It fails with ErrFaucetDisabled unless WithFaucet(true).
func (l *Ledger) Credit(ctx context.Context, account, asset identity.ID, amount uint64) (uint64, error) {
	if !l.faucet {
		return 0, ErrFaucetDisabled
	}
	var bal uint64
	attrs := []any{"account", account.String(), "asset", asset.String(), "amount", amount}
	err := l.update(ctx, OpCredit, attrs, func(tx store.Tx) error {
		a := vault.New(tx)
		if err := a.Credit(account, asset, amount); err != nil {
			return err
		}
		var err error
		bal, err = a.Balance(account, asset)
		return err
	})
	return bal, err
}
