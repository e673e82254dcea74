package auth

import "errors"

var (
	// ErrUnauthorized indicates the caller is not the recorded authority.
	ErrUnauthorized = errors.New("auth: caller is not the authority")

	// ErrMissingSignature indicates a request without signature headers.
	ErrMissingSignature = errors.New("auth: missing request signature")

	// ErrInvalidSignature indicates a signature that does not verify.
	ErrInvalidSignature = errors.New("auth: invalid request signature")

	// ErrInvalidPublicKey indicates an unparsable public key header.
	ErrInvalidPublicKey = errors.New("auth: invalid public key")

	// ErrStaleRequest indicates a timestamp outside the allowed clock skew.
	ErrStaleRequest = errors.New("auth: request timestamp outside allowed skew")

	// ErrReplayedRequest indicates a nonce the signer already used.
	ErrReplayedRequest = errors.New("auth: request nonce already used")

	// ErrNilKey indicates signing with a nil private key.
	ErrNilKey = errors.New("auth: nil private key")
)
