package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not 128 or 256.
	ErrInvalidEntropy = errors.New("wallet: entropy bits must be 128 or 256")

	// ErrIndexOutOfRange indicates an account or key index at or beyond the hardened boundary.
	ErrIndexOutOfRange = errors.New("wallet: index exceeds maximum (2^31-1)")

	// ErrProfileNotFound indicates the named profile does not exist.
	ErrProfileNotFound = errors.New("wallet: profile not found")

	// ErrProfileExists indicates the profile name is already taken.
	ErrProfileExists = errors.New("wallet: profile already exists")

	// ErrInvalidProfileName indicates an empty profile name.
	ErrInvalidProfileName = errors.New("wallet: invalid profile name")

	// ErrDecryptionFailed indicates wrong password or corrupted keystore data.
	ErrDecryptionFailed = errors.New("wallet: seed decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates seed checksum verification failed after decryption.
	ErrChecksumMismatch = errors.New("wallet: seed checksum mismatch")

	// ErrInvalidNetwork indicates an unknown network name.
	ErrInvalidNetwork = errors.New("wallet: invalid network name")

	// ErrInvalidSeed indicates the seed is empty or invalid.
	ErrInvalidSeed = errors.New("wallet: invalid seed")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")

	// ErrKeystoreNotFound indicates no keystore file at the given path.
	ErrKeystoreNotFound = errors.New("wallet: keystore not found")

	// ErrInvalidKeystore indicates a keystore file that cannot be parsed or fails validation.
	ErrInvalidKeystore = errors.New("wallet: invalid keystore")
)
