package identity

import "errors"

var (
	// ErrInvalidID indicates an identifier is not 32 bytes of hex.
	ErrInvalidID = errors.New("identity: invalid identifier")

	// ErrNilPublicKey indicates a nil public key was supplied.
	ErrNilPublicKey = errors.New("identity: nil public key")

	// ErrTooManySeeds indicates a derivation was given more seeds than allowed.
	ErrTooManySeeds = errors.New("identity: too many derivation seeds")

	// ErrSeedTooLong indicates a single derivation seed exceeds MaxSeedLen.
	ErrSeedTooLong = errors.New("identity: derivation seed too long")
)
