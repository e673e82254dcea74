package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// KeystoreVersion is the current keystore file format.
const KeystoreVersion = 1

// Keystore is the on-disk wallet: an encrypted seed plus profile state.
type Keystore struct {
	Version       int    `json:"version"`
	Network       string `json:"network"`
	EncryptedSeed []byte `json:"encrypted_seed"`
	State         *State `json:"state"`
}

// NewKeystore encrypts the seed for mnemonic and creates a "default" profile.
func NewKeystore(mnemonic, passphrase, password, network string) (*Keystore, error) {
	if _, err := chainParams(network); err != nil {
		return nil, err
	}
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	enc, err := EncryptSeed(seed, password)
	if err != nil {
		return nil, err
	}
	state := NewState()
	if _, err := state.Create("default"); err != nil {
		return nil, err
	}
	return &Keystore{
		Version:       KeystoreVersion,
		Network:       network,
		EncryptedSeed: enc,
		State:         state,
	}, nil
}

// Open decrypts the seed and returns the Wallet.
func (k *Keystore) Open(password string) (*Wallet, error) {
	seed, err := DecryptSeed(k.EncryptedSeed, password)
	if err != nil {
		return nil, err
	}
	return NewWallet(seed, k.Network)
}

// Validate checks a keystore read from disk.
func (k *Keystore) Validate() error {
	if k.Version != KeystoreVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidKeystore, k.Version)
	}
	if _, err := chainParams(k.Network); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKeystore, err)
	}
	if len(k.EncryptedSeed) == 0 {
		return fmt.Errorf("%w: missing seed", ErrInvalidKeystore)
	}
	if k.State == nil {
		return fmt.Errorf("%w: missing state", ErrInvalidKeystore)
	}
	if err := k.State.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKeystore, err)
	}
	return nil
}

// SaveKeystore writes k to path with owner-only permissions.
func SaveKeystore(path string, k *Keystore) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create keystore dir: %w", err)
	}
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return fmt.Errorf("wallet: encode keystore: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("wallet: write keystore: %w", err)
	}
	return nil
}

// LoadKeystore reads and validates the keystore at path.
func LoadKeystore(path string) (*Keystore, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeystoreNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("wallet: read keystore: %w", err)
	}
	var k Keystore
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeystore, err)
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return &k, nil
}
