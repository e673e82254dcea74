// Command ibomctl manages ibom keys and talks to an ibomd node.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libibom-go/config"
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/network"
	"github.com/bitfsorg/libibom-go/paymail"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/wallet"
)

// Environment variables read by ibomctl besides those of package network.
const (
	EnvKeystore = "IBOM_KEYSTORE"
	EnvPassword = "IBOM_PASSWORD"
	EnvNetwork  = "IBOM_NETWORK"
)

const callTimeout = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// app carries the global flags and I/O shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	keystore    string
	profile     string
	network     string
	rpcURL      string
	rpcDomain   string
	apiKey      string
	dnsUpstream string

	// resolver turns share handles into identities. Nil selects a DNSSEC resolver.
	resolver *paymail.Resolver
}

type command struct {
	summary string
	run     func(a *app, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"keygen":      {"create a keystore with a new mnemonic", (*app).keygen},
		"import":      {"create a keystore from an existing mnemonic", (*app).importMnemonic},
		"profile":     {"create, list, rename or delete key profiles", (*app).profileCmd},
		"whoami":      {"print the identity of the active profile", (*app).whoami},
		"resolve":     {"resolve a handle (alias@domain, domain, pubkey) to an identity", (*app).resolve},
		"register":    {"register a work", (*app).register},
		"update":      {"update a work's metadata and creators", (*app).update},
		"link-mint":   {"link a mint to a work", (*app).linkMint},
		"set-pricing": {"set a work's payment asset and price", (*app).setPricing},
		"work":        {"show a work", (*app).work},
		"works":       {"list works of an authority", (*app).works},
		"init-pool":   {"create a revenue pool for a work", (*app).initPool},
		"fund":        {"deposit into a revenue pool", (*app).fund},
		"claim":       {"withdraw your payable share from a pool", (*app).claim},
		"claimable":   {"show a member's entitlement in a pool", (*app).claimable},
		"pool":        {"show a pool", (*app).pool},
		"pools":       {"list pools of an authority", (*app).pools},
		"balance":     {"show an account balance", (*app).balance},
		"credit":      {"credit your account from the node faucet", (*app).credit},
	}
}

// run executes one ibomctl invocation and returns the exit code.
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	a := &app{stdout: stdout, stderr: stderr, getenv: getenv}
	rest, err := a.parseGlobal(args)
	if err != nil {
		return 2
	}
	if len(rest) == 0 {
		fmt.Fprintln(stderr, usage())
		return 2
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", rest[0])
		fmt.Fprintln(stderr, usage())
		return 2
	}
	if err := cmd.run(a, rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		reportError(stderr, err)
		return 1
	}
	return 0
}

func (a *app) parseGlobal(args []string) ([]string, error) {
	fs := flag.NewFlagSet("ibomctl", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() { fmt.Fprintln(a.stderr, usage()) }
	defaultKeystore := a.getenv(EnvKeystore)
	if defaultKeystore == "" {
		defaultKeystore = filepath.Join(config.DefaultDataDir(), "keystore.json")
	}
	defaultNetwork := a.getenv(EnvNetwork)
	if defaultNetwork == "" {
		defaultNetwork = "regtest"
	}
	fs.StringVar(&a.keystore, "keystore", defaultKeystore, "keystore file")
	fs.StringVar(&a.profile, "profile", "", "key profile (default: the keystore default)")
	fs.StringVar(&a.network, "network", defaultNetwork, "mainnet, testnet or regtest")
	fs.StringVar(&a.rpcURL, "rpc-url", "", "ibomd JSON-RPC endpoint")
	fs.StringVar(&a.rpcDomain, "rpc-domain", "", "discover the endpoint from _ibom._tcp SRV records of this domain")
	fs.StringVar(&a.apiKey, "api-key", "", "ibomd API key")
	fs.StringVar(&a.dnsUpstream, "dns", "", "DNSSEC-validating resolver for handles (default 8.8.8.8:53)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

func usage() string {
	var sb strings.Builder
	sb.WriteString("Usage:\n  ibomctl [global flags] <command> [flags]\n\nCommands:\n")
	for _, name := range sortedCommands() {
		fmt.Fprintf(&sb, "  %-12s %s\n", name, commands[name].summary)
	}
	sb.WriteString("\nShares are written who:bp,who:bp where who is an identity, a public key,\nalias@domain or a domain, and the bp values sum to 10000.")
	return sb.String()
}

func sortedCommands() []string {
	return slices.Sorted(maps.Keys(commands))
}

func reportError(w io.Writer, err error) {
	if name := network.ErrorName(err); name != "" {
		fmt.Fprintf(w, "Error (%s): %v\n", name, err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) handleResolver() *paymail.Resolver {
	if a.resolver == nil {
		a.resolver = paymail.NewResolver(a.dnsUpstream)
	}
	return a.resolver
}

// parseShares reads a who:bp list, resolving each who through paymail.
func (a *app) parseShares(spec string) ([]revshare.Entry, error) {
	table, err := revshare.ParseShares(spec, a.handleResolver().Resolve)
	if err != nil {
		return nil, err
	}
	return table.Entries(), nil
}

// loadKey opens the keystore and returns the active profile's key.
func (a *app) loadKey() (*wallet.KeyPair, error) {
	ks, err := wallet.LoadKeystore(a.keystore)
	if err != nil {
		return nil, err
	}
	w, err := ks.Open(a.getenv(EnvPassword))
	if err != nil {
		return nil, fmt.Errorf("open keystore (is %s set?): %w", EnvPassword, err)
	}
	p, err := ks.State.Get(a.profile)
	if err != nil {
		return nil, err
	}
	return w.ProfileKey(p)
}

// client connects to ibomd. With requireKey the active profile signs every
// request; otherwise it signs only when the keystore opens.
func (a *app) client(requireKey bool) (*network.Client, error) {
	flags := &network.RPCConfig{URL: a.rpcURL, APIKey: a.apiKey}
	if flags.URL == "" && a.rpcDomain != "" {
		url, err := paymail.ResolveRPCURL(a.rpcDomain, a.handleResolver().DNS)
		if err != nil {
			return nil, err
		}
		flags.URL = url
	}
	env := map[string]string{
		network.EnvRPCURL: a.getenv(network.EnvRPCURL),
		network.EnvAPIKey: a.getenv(network.EnvAPIKey),
	}
	cfg, err := network.ResolveConfig(flags, env, a.network)
	if err != nil {
		return nil, err
	}

	var signer *ec.PrivateKey
	kp, err := a.loadKey()
	switch {
	case err == nil:
		signer = kp.PrivateKey
	case requireKey:
		return nil, err
	}
	return network.NewClient(*cfg, signer)
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("ibomctl "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

// idFlag is an identity.ID flag that records whether it was set.
type idFlag struct {
	id  identity.ID
	set bool
}

func (f *idFlag) String() string {
	if !f.set {
		return ""
	}
	return f.id.String()
}

func (f *idFlag) Set(s string) error {
	id, err := identity.Parse(s)
	if err != nil {
		return err
	}
	f.id, f.set = id, true
	return nil
}

func (f *idFlag) ptr() *identity.ID {
	if !f.set {
		return nil
	}
	id := f.id
	return &id
}

func (f *idFlag) required(name string) (identity.ID, error) {
	if !f.set {
		return identity.Zero, fmt.Errorf("--%s is required", name)
	}
	return f.id, nil
}

// uintFlag is a uint64 flag that records whether it was set.
type uintFlag struct {
	v   uint64
	set bool
}

func (f *uintFlag) String() string { return fmt.Sprint(f.v) }

func (f *uintFlag) Set(s string) error {
	var v uint64
	if _, err := fmt.Sscan(s, &v); err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	f.v, f.set = v, true
	return nil
}
