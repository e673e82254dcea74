package registry

import "errors"

var (
	// ErrURITooLong indicates a metadata URI longer than MaxURILen bytes.
	ErrURITooLong = errors.New("registry: metadata uri exceeds 200 bytes")

	// ErrTooManyCreators indicates more than revshare.MaxEntries creators.
	ErrTooManyCreators = errors.New("registry: too many creators")

	// ErrWorkExists indicates a work is already registered under the key.
	ErrWorkExists = errors.New("registry: work already registered")

	// ErrWorkNotFound indicates no work is registered under the key.
	ErrWorkNotFound = errors.New("registry: work not found")

	// ErrInvalidWorkData indicates a stored work record is malformed.
	ErrInvalidWorkData = errors.New("registry: invalid work record data")
)
