package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"

	"github.com/bitfsorg/libibom-go/identity"
)

const (
	// BIP44 path constants.
	PurposeBIP44 = 44
	CoinTypeIbom = 7741

	// IdentityChain is the only chain used under an account.
	IdentityChain = 0

	// MaxIndex is the largest non-hardened BIP32 index.
	MaxIndex = 1<<31 - 1

	// Hardened is the BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet derives identity keys from a seed.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   string
}

// KeyPair is a derived key with the identity it signs for.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"-"`
	ID         identity.ID    `json:"id"`
	Path       string         `json:"path"`
}

// chainParams maps a network name to BIP32 version bytes.
func chainParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet":
		return &chaincfg.MainNet, nil
	case "testnet", "regtest":
		return &chaincfg.TestNet, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, network)
}

// NewWallet creates a Wallet from a BIP39 seed. An empty network means mainnet.
func NewWallet(seed []byte, network string) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == "" {
		network = "mainnet"
	}
	params, err := chainParams(network)
	if err != nil {
		return nil, err
	}
	masterKey, err := bip32.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return &Wallet{masterKey: masterKey, network: network}, nil
}

// Network returns the wallet's network name.
func (w *Wallet) Network() string {
	return w.network
}

// DeriveIdentity derives the key at m/44'/7741'/account'/0/index.
func (w *Wallet) DeriveIdentity(account, index uint32) (*KeyPair, error) {
	if account > MaxIndex || index > MaxIndex {
		return nil, fmt.Errorf("%w: account %d, index %d", ErrIndexOutOfRange, account, index)
	}
	steps := []struct {
		name  string
		index uint32
	}{
		{"purpose", PurposeBIP44 + Hardened},
		{"coin type", CoinTypeIbom + Hardened},
		{"account", account + Hardened},
		{"chain", IdentityChain},
		{"index", index},
	}
	key := w.masterKey
	for _, step := range steps {
		child, err := key.Child(step.index)
		if err != nil {
			return nil, fmt.Errorf("%w: %s derivation: %w", ErrDerivationFailed, step.name, err)
		}
		key = child
	}
	return extKeyToKeyPair(key, fmt.Sprintf("m/44'/%d'/%d'/%d/%d", CoinTypeIbom, account, IdentityChain, index))
}

// extKeyToKeyPair converts a BIP32 extended key to a KeyPair.
func extKeyToKeyPair(extKey *bip32.ExtendedKey, path string) (*KeyPair, error) {
	privKey, err := extKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}

	pubKey := privKey.PubKey()
	if pubKey == nil {
		return nil, fmt.Errorf("%w: failed to derive public key", ErrDerivationFailed)
	}

	id, err := identity.FromPublicKey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  pubKey,
		ID:         id,
		Path:       path,
	}, nil
}
