package registry

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/store"
)

func makeID(seed byte) identity.ID {
	var id identity.ID
	for i := range id {
		id[i] = seed
	}
	return id
}

var (
	owner    = makeID(0xA0)
	stranger = makeID(0xEE)
	workID   = makeID(0x01)
)

func halves() []revshare.Entry {
	return []revshare.Entry{
		{Beneficiary: makeID(0xC1), BP: 5000},
		{Beneficiary: makeID(0xC2), BP: 5000},
	}
}

func tenCreators() []revshare.Entry {
	entries := make([]revshare.Entry, 10)
	for i := range entries {
		entries[i] = revshare.Entry{Beneficiary: makeID(byte(0x10 + i)), BP: 1000}
	}
	return entries
}

func params() WorkParams {
	return WorkParams{
		WorkID:      workID,
		MetadataURI: "ipfs://bafy/work.json",
		Fingerprint: makeID(0xF0),
		Creators:    halves(),
	}
}

// update runs fn in one transaction against db.
func update(t *testing.T, db store.DB, fn func(r *Registry) error) error {
	t.Helper()
	return db.Update(func(tx store.Tx) error { return fn(New(tx)) })
}

func get(t *testing.T, db store.DB, key Key) *Work {
	t.Helper()
	var w *Work
	require.NoError(t, db.View(func(tx store.Tx) error {
		var err error
		w, err = New(tx).Get(key)
		return err
	}))
	return w
}

func registered(t *testing.T) (store.DB, Key) {
	t.Helper()
	db := store.NewMemDB()
	require.NoError(t, update(t, db, func(r *Registry) error {
		_, err := r.Register(owner, params(), 1_700_000_000)
		return err
	}))
	return db, Key{Authority: owner, WorkID: workID}
}

func TestRegister(t *testing.T) {
	db, key := registered(t)
	w := get(t, db, key)

	assert.Equal(t, owner, w.Authority)
	assert.Equal(t, workID, w.WorkID)
	assert.Equal(t, "ipfs://bafy/work.json", w.MetadataURI)
	assert.Equal(t, makeID(0xF0), w.Fingerprint)
	assert.Equal(t, int64(1_700_000_000), w.RegisteredAt)
	assert.Equal(t, uint32(1), w.Version)
	assert.Equal(t, 2, w.Creators.Len())
	assert.Nil(t, w.LinkedMint)
	assert.Nil(t, w.Collection)
	assert.Nil(t, w.PaymentAsset)
	assert.Nil(t, w.Price)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *WorkParams)
		wantErr error
	}{
		{"uri at limit", func(p *WorkParams) { p.MetadataURI = strings.Repeat("a", MaxURILen) }, nil},
		{"empty uri", func(p *WorkParams) { p.MetadataURI = "" }, nil},
		{"ten creators", func(p *WorkParams) { p.Creators = tenCreators() }, nil},
		{"uri too long", func(p *WorkParams) { p.MetadataURI = strings.Repeat("a", MaxURILen+1) }, ErrURITooLong},
		{"eleven creators", func(p *WorkParams) {
			p.Creators = append(tenCreators(), revshare.Entry{Beneficiary: makeID(0xFF)})
		}, ErrTooManyCreators},
		{"sum 9999", func(p *WorkParams) { p.Creators[0].BP = 4999 }, revshare.ErrInvalidSharesSum},
		{"sum 10001", func(p *WorkParams) { p.Creators[0].BP = 5001 }, revshare.ErrInvalidSharesSum},
		{"duplicate creator", func(p *WorkParams) { p.Creators[1].Beneficiary = p.Creators[0].Beneficiary }, revshare.ErrDuplicateBeneficiary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := store.NewMemDB()
			p := params()
			tt.mutate(&p)
			err := update(t, db, func(r *Registry) error {
				_, err := r.Register(owner, p, 1)
				return err
			})
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, db.View(func(tx store.Tx) error {
				_, err := New(tx).Get(Key{owner, workID})
				assert.ErrorIs(t, err, ErrWorkNotFound)
				return nil
			}))
		})
	}
}

func TestRegister_TooManyCreatorsWrapsTableError(t *testing.T) {
	db := store.NewMemDB()
	p := params()
	p.Creators = append(tenCreators(), revshare.Entry{Beneficiary: makeID(0xFF)})
	err := update(t, db, func(r *Registry) error {
		_, err := r.Register(owner, p, 1)
		return err
	})
	assert.ErrorIs(t, err, ErrTooManyCreators)
	assert.ErrorIs(t, err, revshare.ErrTooManyEntries)
}

func TestRegister_Duplicate(t *testing.T) {
	db, _ := registered(t)
	err := update(t, db, func(r *Registry) error {
		_, err := r.Register(owner, params(), 2)
		return err
	})
	assert.ErrorIs(t, err, ErrWorkExists)

	// same work id under another authority is a different key
	require.NoError(t, update(t, db, func(r *Registry) error {
		_, err := r.Register(stranger, params(), 2)
		return err
	}))
}

func TestUpdate(t *testing.T) {
	db, key := registered(t)
	newCreators := []revshare.Entry{{Beneficiary: makeID(0xC3), BP: 10000}}

	require.NoError(t, update(t, db, func(r *Registry) error {
		_, err := r.Update(owner, key, UpdateParams{
			MetadataURI: "ar://v2",
			Fingerprint: makeID(0xF1),
			Creators:    newCreators,
		})
		return err
	}))

	w := get(t, db, key)
	assert.Equal(t, "ar://v2", w.MetadataURI)
	assert.Equal(t, makeID(0xF1), w.Fingerprint)
	assert.Equal(t, uint32(2), w.Version)
	assert.Equal(t, int64(1_700_000_000), w.RegisteredAt, "registration time is immutable")
	assert.Equal(t, newCreators, w.Creators.Entries())
}

func TestUpdate_Rejections(t *testing.T) {
	db, key := registered(t)
	good := UpdateParams{MetadataURI: "x", Creators: halves()}

	tests := []struct {
		name    string
		caller  identity.ID
		key     Key
		p       UpdateParams
		wantErr error
	}{
		{"stranger", stranger, key, good, auth.ErrUnauthorized},
		{"missing work", owner, Key{owner, makeID(0x99)}, good, ErrWorkNotFound},
		{"uri too long", owner, key, UpdateParams{MetadataURI: strings.Repeat("u", 201), Creators: halves()}, ErrURITooLong},
		{"bad sum", owner, key, UpdateParams{Creators: []revshare.Entry{{Beneficiary: makeID(1), BP: 1}}}, revshare.ErrInvalidSharesSum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := update(t, db, func(r *Registry) error {
				_, err := r.Update(tt.caller, tt.key, tt.p)
				return err
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	w := get(t, db, key)
	assert.Equal(t, uint32(1), w.Version, "failed updates leave the record untouched")
	assert.Equal(t, "ipfs://bafy/work.json", w.MetadataURI)
}

func TestUpdate_VersionSaturates(t *testing.T) {
	db, key := registered(t)
	require.NoError(t, update(t, db, func(r *Registry) error {
		w, err := r.Get(key)
		if err != nil {
			return err
		}
		w.Version = math.MaxUint32 - 1
		return r.put(w)
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, update(t, db, func(r *Registry) error {
			_, err := r.Update(owner, key, UpdateParams{Creators: halves()})
			return err
		}))
	}
	assert.Equal(t, uint32(math.MaxUint32), get(t, db, key).Version)
}

func TestLinkMint(t *testing.T) {
	db, key := registered(t)
	mint, coll := makeID(0x3A), makeID(0x3B)

	require.NoError(t, update(t, db, func(r *Registry) error {
		_, err := r.LinkMint(owner, key, mint, &coll)
		return err
	}))
	w := get(t, db, key)
	require.NotNil(t, w.LinkedMint)
	require.NotNil(t, w.Collection)
	assert.Equal(t, mint, *w.LinkedMint)
	assert.Equal(t, coll, *w.Collection)
	assert.Equal(t, uint32(1), w.Version)

	// relink without collection clears it
	require.NoError(t, update(t, db, func(r *Registry) error {
		_, err := r.LinkMint(owner, key, makeID(0x3C), nil)
		return err
	}))
	w = get(t, db, key)
	assert.Equal(t, makeID(0x3C), *w.LinkedMint)
	assert.Nil(t, w.Collection)

	err := update(t, db, func(r *Registry) error {
		_, err := r.LinkMint(stranger, key, mint, nil)
		return err
	})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestSetPricing(t *testing.T) {
	db, key := registered(t)
	asset := makeID(0x55)
	price := uint64(2_500_000)

	require.NoError(t, update(t, db, func(r *Registry) error {
		_, err := r.SetPricing(owner, key, &asset, &price)
		return err
	}))
	w := get(t, db, key)
	require.NotNil(t, w.PaymentAsset)
	require.NotNil(t, w.Price)
	assert.Equal(t, asset, *w.PaymentAsset)
	assert.Equal(t, price, *w.Price)

	require.NoError(t, update(t, db, func(r *Registry) error {
		_, err := r.SetPricing(owner, key, nil, nil)
		return err
	}))
	w = get(t, db, key)
	assert.Nil(t, w.PaymentAsset)
	assert.Nil(t, w.Price)

	err := update(t, db, func(r *Registry) error {
		_, err := r.SetPricing(stranger, key, &asset, &price)
		return err
	})
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestListByAuthority(t *testing.T) {
	db := store.NewMemDB()
	require.NoError(t, update(t, db, func(r *Registry) error {
		for _, id := range []byte{3, 1, 2} {
			p := params()
			p.WorkID = makeID(id)
			if _, err := r.Register(owner, p, 1); err != nil {
				return err
			}
		}
		_, err := r.Register(stranger, params(), 1)
		return err
	}))

	require.NoError(t, db.View(func(tx store.Tx) error {
		works, err := New(tx).ListByAuthority(owner)
		require.NoError(t, err)
		require.Len(t, works, 3)
		for i, w := range works {
			assert.Equal(t, makeID(byte(i+1)), w.WorkID)
		}
		return nil
	}))
}

func TestWorkCodec(t *testing.T) {
	mint, coll, asset := makeID(1), makeID(2), makeID(3)
	price := uint64(42)
	full := &Work{
		Authority:    owner,
		WorkID:       workID,
		MetadataURI:  strings.Repeat("z", MaxURILen),
		Fingerprint:  makeID(0xF0),
		Creators:     revshare.MustTable(tenCreators()...),
		RegisteredAt: -5,
		Version:      math.MaxUint32,
		LinkedMint:   &mint,
		Collection:   &coll,
		PaymentAsset: &asset,
		Price:        &price,
	}
	bare := &Work{
		Authority: owner,
		WorkID:    workID,
		Creators:  revshare.MustTable(revshare.Entry{Beneficiary: owner, BP: 10000}),
		Version:   1,
	}

	for name, w := range map[string]*Work{"full": full, "bare": bare} {
		t.Run(name, func(t *testing.T) {
			data, err := SerializeWork(w)
			require.NoError(t, err)
			assert.Len(t, data, WorkRecordSize)

			decoded, err := DeserializeWork(data)
			require.NoError(t, err)
			assert.Equal(t, w, decoded)
		})
	}

	t.Run("corrupt", func(t *testing.T) {
		data, err := SerializeWork(bare)
		require.NoError(t, err)
		_, err = DeserializeWork(data[1:])
		assert.ErrorIs(t, err, ErrInvalidWorkData)

		data[0] = 0x00
		_, err = DeserializeWork(data)
		assert.ErrorIs(t, err, ErrInvalidWorkData)
	})
}

func TestKeyAddress(t *testing.T) {
	a := Key{owner, workID}.Address()
	b := Key{owner, makeID(0x02)}.Address()
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, (&Work{Authority: owner, WorkID: workID}).Address())
}
