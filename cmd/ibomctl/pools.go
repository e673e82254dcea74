package main

import (
	"flag"

	"github.com/bitfsorg/libibom-go/api"
)

func poolRefFlags(fs *flag.FlagSet) (*idFlag, *idFlag) {
	authority, work := &idFlag{}, &idFlag{}
	fs.Var(authority, "authority", "pool authority (default: you)")
	fs.Var(work, "work", "work the pool pays for")
	return authority, work
}

func (a *app) poolRef(authority, work *idFlag) (api.PoolRef, error) {
	ref, err := a.workRef(authority, work)
	if err != nil {
		return api.PoolRef{}, err
	}
	return api.PoolRef{Authority: ref.Authority, Work: ref.WorkID}, nil
}

func (a *app) initPool(args []string) error {
	fs := newFlagSet(a, "init-pool")
	var work, asset idFlag
	fs.Var(&work, "work", "work the pool pays for")
	fs.Var(&asset, "asset", "fungible asset (omit for native)")
	members := fs.String("members", "", "member shares who:bp,...")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	w, err := work.required("work")
	if err != nil {
		return err
	}
	entries, err := a.parseShares(*members)
	if err != nil {
		return err
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	p, err := c.InitPool(ctx, api.InitPoolParams{Work: w, Asset: asset.ptr(), Members: entries})
	if err != nil {
		return err
	}
	return a.printJSON(p)
}

func (a *app) fund(args []string) error {
	fs := newFlagSet(a, "fund")
	authority, work := poolRefFlags(fs)
	var amount uintFlag
	fs.Var(&amount, "amount", "amount in base units")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := a.poolRef(authority, work)
	if err != nil {
		return err
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	p, err := c.Fund(ctx, api.FundParams{PoolRef: ref, Amount: amount.v})
	if err != nil {
		return err
	}
	return a.printJSON(p)
}

func (a *app) claim(args []string) error {
	fs := newFlagSet(a, "claim")
	authority, work := poolRefFlags(fs)
	var asset idFlag
	fs.Var(&asset, "asset", "the pool's asset (omit for native pools)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := a.poolRef(authority, work)
	if err != nil {
		return err
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	r, err := c.Claim(ctx, api.ClaimParams{PoolRef: ref, Asset: asset.ptr()})
	if err != nil {
		return err
	}
	return a.printJSON(r)
}

func (a *app) claimable(args []string) error {
	fs := newFlagSet(a, "claimable")
	authority, work := poolRefFlags(fs)
	var member idFlag
	fs.Var(&member, "member", "member (default: you)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := a.poolRef(authority, work)
	if err != nil {
		return err
	}

	c, err := a.client(!member.set)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	st, err := c.Claimable(ctx, api.ClaimableParams{PoolRef: ref, Member: member.ptr()})
	if err != nil {
		return err
	}
	return a.printJSON(st)
}

func (a *app) pool(args []string) error {
	fs := newFlagSet(a, "pool")
	authority, work := poolRefFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	ref, err := a.poolRef(authority, work)
	if err != nil {
		return err
	}
	c, err := a.client(false)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	p, err := c.GetPool(ctx, ref)
	if err != nil {
		return err
	}
	return a.printJSON(p)
}

func (a *app) pools(args []string) error {
	fs := newFlagSet(a, "pools")
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
	ps, err := c.ListPools(ctx, authority.id)
	if err != nil {
		return err
	}
	return a.printJSON(ps)
}

func (a *app) balance(args []string) error {
	fs := newFlagSet(a, "balance")
	var account, asset idFlag
	fs.Var(&account, "account", "account (default: you)")
	fs.Var(&asset, "asset", "asset (default: native)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	c, err := a.client(!account.set)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	b, err := c.Balance(ctx, api.BalanceParams{Account: account.ptr(), Asset: asset.ptr()})
	if err != nil {
		return err
	}
	return a.printJSON(b)
}

func (a *app) credit(args []string) error {
	fs := newFlagSet(a, "credit")
	var asset idFlag
	var amount uintFlag
	fs.Var(&asset, "asset", "asset (default: native)")
	fs.Var(&amount, "amount", "amount in base units")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	b, err := c.Credit(ctx, api.BalanceParams{Asset: asset.ptr(), Amount: amount.v})
	if err != nil {
		return err
	}
	return a.printJSON(b)
}
