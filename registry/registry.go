package registry

import (
	"errors"
	"fmt"
	"math"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/store"
)

// Registry reads and mutates works inside one store transaction.
type Registry struct {
	tx store.Tx
}

// New binds a Registry to tx.
func New(tx store.Tx) *Registry {
	return &Registry{tx: tx}
}

// Get loads the work at key.
func (r *Registry) Get(key Key) (*Work, error) {
	data, err := r.tx.Get(store.Works, key.Bytes())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrWorkNotFound, key.Authority.Short(), key.WorkID.Short())
	}
	return DeserializeWork(data)
}

// ListByAuthority returns every work registered by authority, ordered by work id.
func (r *Registry) ListByAuthority(authority identity.ID) ([]*Work, error) {
	var works []*Work
	err := r.tx.ForEachPrefix(store.Works, authority[:], func(_, v []byte) error {
		w, err := DeserializeWork(v)
		if err != nil {
			return err
		}
		works = append(works, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return works, nil
}

func (r *Registry) put(w *Work) error {
	data, err := SerializeWork(w)
	if err != nil {
		return err
	}
	return r.tx.Put(store.Works, w.Key().Bytes(), data)
}

// Register creates a work owned by authority at version 1.
func (r *Registry) Register(authority identity.ID, p WorkParams, now int64) (*Work, error) {
	key := Key{Authority: authority, WorkID: p.WorkID}
	existing, err := r.tx.Get(store.Works, key.Bytes())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrWorkExists, authority.Short(), p.WorkID.Short())
	}
	if err := validateURI(p.MetadataURI); err != nil {
		return nil, err
	}
	creators, err := creatorTable(p.Creators)
	if err != nil {
		return nil, err
	}

	w := &Work{
		Authority:    authority,
		WorkID:       p.WorkID,
		MetadataURI:  p.MetadataURI,
		Fingerprint:  p.Fingerprint,
		Creators:     creators,
		RegisteredAt: now,
		Version:      1,
	}
	if err := r.put(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Update replaces the URI, fingerprint and creators of a work and bumps its
// version. The version stops at math.MaxUint32.
func (r *Registry) Update(caller identity.ID, key Key, p UpdateParams) (*Work, error) {
	w, err := r.authorized(caller, key)
	if err != nil {
		return nil, err
	}
	if err := validateURI(p.MetadataURI); err != nil {
		return nil, err
	}
	creators, err := creatorTable(p.Creators)
	if err != nil {
		return nil, err
	}

	w.MetadataURI = p.MetadataURI
	w.Fingerprint = p.Fingerprint
	w.Creators = creators
	if w.Version < math.MaxUint32 {
		w.Version++
	}
	if err := r.put(w); err != nil {
		return nil, err
	}
	return w, nil
}

// LinkMint records the token mint and optional collection for a work.
// Both values are overwritten; a nil collection clears it.
func (r *Registry) LinkMint(caller identity.ID, key Key, mint identity.ID, collection *identity.ID) (*Work, error) {
	w, err := r.authorized(caller, key)
	if err != nil {
		return nil, err
	}
	w.LinkedMint = &mint
	w.Collection = cloneID(collection)
	if err := r.put(w); err != nil {
		return nil, err
	}
	return w, nil
}

// SetPricing records the payment asset and price for a work.
// Both values are overwritten; nil clears them.
func (r *Registry) SetPricing(caller identity.ID, key Key, paymentAsset *identity.ID, price *uint64) (*Work, error) {
	w, err := r.authorized(caller, key)
	if err != nil {
		return nil, err
	}
	w.PaymentAsset = cloneID(paymentAsset)
	w.Price = nil
	if price != nil {
		v := *price
		w.Price = &v
	}
	if err := r.put(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Registry) authorized(caller identity.ID, key Key) (*Work, error) {
	w, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAuthority(w.Authority, caller); err != nil {
		return nil, err
	}
	return w, nil
}

func validateURI(uri string) error {
	if len(uri) > MaxURILen {
		return fmt.Errorf("%w: %d bytes", ErrURITooLong, len(uri))
	}
	return nil
}

func creatorTable(entries []revshare.Entry) (revshare.Table, error) {
	t, err := revshare.NewTable(entries)
	if errors.Is(err, revshare.ErrTooManyEntries) {
		return t, fmt.Errorf("%w: %w", ErrTooManyCreators, err)
	}
	return t, err
}

func cloneID(id *identity.ID) *identity.ID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
