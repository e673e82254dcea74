package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/wallet"
)

func (a *app) keygen(args []string) error {
	fs := newFlagSet(a, "keygen")
	words := fs.Int("words", 12, "mnemonic length: 12 or 24")
	passphrase := fs.String("passphrase", "", "optional BIP39 passphrase")
	force := fs.Bool("force", false, "overwrite an existing keystore")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	bits := wallet.Mnemonic12Words
	if *words == 24 {
		bits = wallet.Mnemonic24Words
	} else if *words != 12 {
		return fmt.Errorf("--words must be 12 or 24")
	}
	mnemonic, err := wallet.GenerateMnemonic(bits)
	if err != nil {
		return err
	}
	return a.writeKeystore(mnemonic, *passphrase, *force, true)
}

func (a *app) importMnemonic(args []string) error {
	fs := newFlagSet(a, "import")
	mnemonic := fs.String("mnemonic", "", "BIP39 mnemonic")
	passphrase := fs.String("passphrase", "", "optional BIP39 passphrase")
	force := fs.Bool("force", false, "overwrite an existing keystore")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *mnemonic == "" {
		return fmt.Errorf("--mnemonic is required")
	}
	return a.writeKeystore(*mnemonic, *passphrase, *force, false)
}

func (a *app) writeKeystore(mnemonic, passphrase string, force, showMnemonic bool) error {
	password := a.getenv(EnvPassword)
	if password == "" {
		return fmt.Errorf("%s must be set to encrypt the keystore", EnvPassword)
	}
	if _, err := os.Stat(a.keystore); err == nil && !force {
		return fmt.Errorf("keystore %s exists (use --force to overwrite)", a.keystore)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	ks, err := wallet.NewKeystore(mnemonic, passphrase, password, a.network)
	if err != nil {
		return err
	}
	if err := wallet.SaveKeystore(a.keystore, ks); err != nil {
		return err
	}
	w, err := ks.Open(password)
	if err != nil {
		return err
	}
	p, err := ks.State.Get("")
	if err != nil {
		return err
	}
	kp, err := w.ProfileKey(p)
	if err != nil {
		return err
	}

	out := struct {
		Keystore string      `json:"keystore"`
		Network  string      `json:"network"`
		Profile  string      `json:"profile"`
		Identity identity.ID `json:"identity"`
		Path     string      `json:"path"`
		Mnemonic string      `json:"mnemonic,omitempty"`
	}{a.keystore, ks.Network, p.Name, kp.ID, kp.Path, ""}
	if showMnemonic {
		out.Mnemonic = mnemonic
	}
	return a.printJSON(out)
}

func (a *app) profileCmd(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: ibomctl profile <create|list|rename|delete|default> [name...]")
	}
	ks, err := wallet.LoadKeystore(a.keystore)
	if err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		w, err := ks.Open(a.getenv(EnvPassword))
		if err != nil {
			return err
		}
		type row struct {
			Name     string      `json:"name"`
			Default  bool        `json:"default"`
			Identity identity.ID `json:"identity"`
			Path     string      `json:"path"`
		}
		rows := []row{}
		for _, p := range ks.State.List() {
			kp, err := w.ProfileKey(&p)
			if err != nil {
				return err
			}
			rows = append(rows, row{p.Name, p.Name == ks.State.Default, kp.ID, kp.Path})
		}
		return a.printJSON(rows)
	case "create":
		if len(rest) != 1 {
			return fmt.Errorf("usage: ibomctl profile create <name>")
		}
		if _, err := ks.State.Create(rest[0]); err != nil {
			return err
		}
	case "rename":
		if len(rest) != 2 {
			return fmt.Errorf("usage: ibomctl profile rename <old> <new>")
		}
		if err := ks.State.Rename(rest[0], rest[1]); err != nil {
			return err
		}
	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("usage: ibomctl profile delete <name>")
		}
		if err := ks.State.Delete(rest[0]); err != nil {
			return err
		}
	case "default":
		if len(rest) != 1 {
			return fmt.Errorf("usage: ibomctl profile default <name>")
		}
		if _, err := ks.State.Get(rest[0]); err != nil {
			return err
		}
		ks.State.Default = rest[0]
	default:
		return fmt.Errorf("unknown profile subcommand %q", sub)
	}
	if err := wallet.SaveKeystore(a.keystore, ks); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "ok")
	return nil
}

func (a *app) whoami(args []string) error {
	fs := newFlagSet(a, "whoami")
	remote := fs.Bool("remote", false, "ask the node which identity it authenticated")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !*remote {
		kp, err := a.loadKey()
		if err != nil {
			return err
		}
		return a.printJSON(map[string]any{"identity": kp.ID, "path": kp.Path})
	}
	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := callContext()
	defer cancel()
	id, err := c.Whoami(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(map[string]any{"identity": id})
}

func (a *app) resolve(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ibomctl resolve <handle>")
	}
	id, err := a.handleResolver().Resolve(args[0])
	if err != nil {
		return err
	}
	return a.printJSON(map[string]any{"handle": args[0], "identity": id})
}
