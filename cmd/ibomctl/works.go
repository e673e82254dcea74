package main

import (
	"flag"
	"fmt"

	"github.com/bitfsorg/libibom-go/api"
	"github.com/bitfsorg/libibom-go/identity"
)

// workRefFlags registers -authority and -work. Authority defaults to the signer.
func workRefFlags(fs *flag.FlagSet) (*idFlag, *idFlag) {
	authority, work := &idFlag{}, &idFlag{}
	fs.Var(authority, "authority", "work authority (default: you)")
	fs.Var(work, "work", "work id")
	return authority, work
}

func (a *app) register(args []string) error {
	fs := newFlagSet(a, "register")
	var workID, fingerprint idFlag
	fs.Var(&workID, "work", "work id (64 hex)")
	fs.Var(&fingerprint, "fingerprint", "content hash (64 hex)")
	uri := fs.String("uri", "", "metadata URI")
	creators := fs.String("creators", "", "creator shares who:bp,...")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	id, err := workID.required("work")
	if err != nil {
		return err
	}
	entries, err := a.parseShares(*creators)
	if err != nil {
		return err
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	w, err := c.RegisterWork(ctx, api.RegisterParams{
		WorkID:      id,
		MetadataURI: *uri,
		Fingerprint: fingerprint.id,
		Creators:    entries,
	})
	if err != nil {
		return err
	}
	return a.printJSON(w)
}

func (a *app) update(args []string) error {
	fs := newFlagSet(a, "update")
	authority, work := workRefFlags(fs)
	var fingerprint idFlag
	fs.Var(&fingerprint, "fingerprint", "content hash (64 hex)")
	uri := fs.String("uri", "", "metadata URI")
	creators := fs.String("creators", "", "creator shares who:bp,...")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := a.workRef(authority, work)
	if err != nil {
		return err
	}
	entries, err := a.parseShares(*creators)
	if err != nil {
		return err
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	w, err := c.UpdateWork(ctx, api.UpdateParams{
		WorkRef:     ref,
		MetadataURI: *uri,
		Fingerprint: fingerprint.id,
		Creators:    entries,
	})
	if err != nil {
		return err
	}
	return a.printJSON(w)
}

func (a *app) linkMint(args []string) error {
	fs := newFlagSet(a, "link-mint")
	authority, work := workRefFlags(fs)
	var mint, collection idFlag
	fs.Var(&mint, "mint", "mint id")
	fs.Var(&collection, "collection", "optional collection id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := a.workRef(authority, work)
	if err != nil {
		return err
	}
	m, err := mint.required("mint")
	if err != nil {
		return err
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	w, err := c.LinkMint(ctx, api.LinkMintParams{WorkRef: ref, Mint: m, Collection: collection.ptr()})
	if err != nil {
		return err
	}
	return a.printJSON(w)
}

func (a *app) setPricing(args []string) error {
	fs := newFlagSet(a, "set-pricing")
	authority, work := workRefFlags(fs)
	var asset idFlag
	var price uintFlag
	fs.Var(&asset, "asset", "payment asset (omit to clear)")
	fs.Var(&price, "price", "price in base units (omit to clear)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := a.workRef(authority, work)
	if err != nil {
		return err
	}
	params := api.SetPricingParams{WorkRef: ref, PaymentAsset: asset.ptr()}
	if price.set {
		params.Price = &price.v
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	w, err := c.SetPricing(ctx, params)
	if err != nil {
		return err
	}
	return a.printJSON(w)
}

func (a *app) work(args []string) error {
	fs := newFlagSet(a, "work")
	authority, work := workRefFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := a.workRef(authority, work)
	if err != nil {
		return err
	}
	c, err := a.client(false)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	w, err := c.GetWork(ctx, ref)
	if err != nil {
		return err
	}
	return a.printJSON(w)
}

func (a *app) works(args []string) error {
	fs := newFlagSet(a, "works")
	var authority idFlag
	fs.Var(&authority, "authority", "authority (default: you)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	c, err := a.client(!authority.set)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	ws, err := c.ListWorks(ctx, authority.id)
	if err != nil {
		return err
	}
	return a.printJSON(ws)
}

// workRef fills a missing authority from the active profile.
func (a *app) workRef(authority, work *idFlag) (api.WorkRef, error) {
	id, err := work.required("work")
	if err != nil {
		return api.WorkRef{}, err
	}
	auth, err := a.authorityOrSelf(authority)
	if err != nil {
		return api.WorkRef{}, err
	}
	return api.WorkRef{Authority: auth, WorkID: id}, nil
}

func (a *app) authorityOrSelf(f *idFlag) (identity.ID, error) {
	if f.set {
		return f.id, nil
	}
	kp, err := a.loadKey()
	if err != nil {
		return identity.Zero, fmt.Errorf("--authority is required without a keystore: %w", err)
	}
	return kp.ID, nil
}
