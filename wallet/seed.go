// Package wallet holds the signing keys behind ibom identities.
//
// Keys come from a BIP39 mnemonic and are derived along
// m/44'/7741'/{account}'/0/{index}. The seed is stored encrypted with
// Argon2id and AES-256-GCM in a JSON keystore alongside named profiles, each
// profile pinning one derived key.
package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/compat/bip39"
	"golang.org/x/crypto/argon2"
)

const (
	// Mnemonic entropy sizes.
	Mnemonic12Words = 128 // 12-word mnemonic
	Mnemonic24Words = 256 // 24-word mnemonic

	// Argon2id parameters for seed encryption.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Encryption format.
	seedFormatVersion = 1
	SaltLen           = 16
	NonceLen          = 12
	ChecksumLen       = 4
)

// GenerateMnemonic creates a new BIP39 mnemonic with the specified entropy bits.
// Use Mnemonic12Words (128) for 12 words or Mnemonic24Words (256) for 24 words.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != Mnemonic12Words && entropyBits != Mnemonic24Words {
		return "", ErrInvalidEntropy
	}

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("wallet: failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic string is valid BIP39.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives a 64-byte BIP39 seed from mnemonic + optional passphrase.
//
//	seed = PBKDF2(mnemonic, "mnemonic"+passphrase, 2048, 64, SHA512)
//
// Note: passphrase can be empty string "" (still participates in derivation).
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to derive seed: %w", err)
	}

	return seed, nil
}

// sealedSeed is the encrypted seed format:
//
//	version(1B) || salt(16B) || nonce(12B) || AES-GCM(argon2id(password, salt), nonce, seed || SHA256(seed)[:4])
type sealedSeed struct {
	salt       []byte
	nonce      []byte
	ciphertext []byte
}

func (s sealedSeed) bytes() []byte {
	out := make([]byte, 0, 1+len(s.salt)+len(s.nonce)+len(s.ciphertext))
	out = append(out, seedFormatVersion)
	out = append(out, s.salt...)
	out = append(out, s.nonce...)
	return append(out, s.ciphertext...)
}

func parseSealedSeed(b []byte) (sealedSeed, bool) {
	if len(b) < 1+SaltLen+NonceLen+ChecksumLen || b[0] != seedFormatVersion {
		return sealedSeed{}, false
	}
	b = b[1:]
	return sealedSeed{
		salt:       b[:SaltLen],
		nonce:      b[SaltLen : SaltLen+NonceLen],
		ciphertext: b[SaltLen+NonceLen:],
	}, true
}

// EncryptSeed seals the seed under password with Argon2id and AES-256-GCM.
// Every call draws a fresh salt and nonce.
func EncryptSeed(seed []byte, password string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}

	sealed := sealedSeed{salt: make([]byte, SaltLen), nonce: make([]byte, NonceLen)}
	if _, err := rand.Read(sealed.salt); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate salt: %w", err)
	}
	if _, err := rand.Read(sealed.nonce); err != nil {
		return nil, fmt.Errorf("wallet: failed to generate nonce: %w", err)
	}

	gcm, err := seedCipher(password, sealed.salt)
	if err != nil {
		return nil, err
	}
	plaintext := append(append(make([]byte, 0, len(seed)+ChecksumLen), seed...), seedChecksum(seed)...)
	sealed.ciphertext = gcm.Seal(nil, sealed.nonce, plaintext, nil)
	return sealed.bytes(), nil
}

// DecryptSeed reverses EncryptSeed. A wrong password and a corrupted blob
// both yield ErrDecryptionFailed.
func DecryptSeed(encrypted []byte, password string) ([]byte, error) {
	sealed, ok := parseSealedSeed(encrypted)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	gcm, err := seedCipher(password, sealed.salt)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := gcm.Open(nil, sealed.nonce, sealed.ciphertext, nil)
	if err != nil || len(plaintext) < ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	seed, sum := plaintext[:len(plaintext)-ChecksumLen], plaintext[len(plaintext)-ChecksumLen:]
	if subtle.ConstantTimeCompare(sum, seedChecksum(seed)) != 1 {
		return nil, ErrChecksumMismatch
	}
	return seed, nil
}

func seedCipher(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("wallet: AES cipher creation failed: %w", err)
	}
	return cipher.NewGCM(block)
}

func seedChecksum(seed []byte) []byte {
	sum := sha256.Sum256(seed)
	return sum[:ChecksumLen]
}
