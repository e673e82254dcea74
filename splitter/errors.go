package splitter

import "errors"

var (
	// ErrTooManyMembers indicates more than revshare.MaxEntries pool members.
	ErrTooManyMembers = errors.New("splitter: too many members")

	// ErrInvalidAmount indicates a zero funding amount.
	ErrInvalidAmount = errors.New("splitter: amount must be positive")

	// ErrNotAMember indicates the claimant holds no share in the pool.
	ErrNotAMember = errors.New("splitter: not a pool member")

	// ErrNothingToClaim indicates the member has already been paid its full entitlement.
	ErrNothingToClaim = errors.New("splitter: nothing to claim")

	// ErrWrongPoolKind indicates a claim mode that does not match the pool's asset.
	ErrWrongPoolKind = errors.New("splitter: claim mode does not match pool asset")

	// ErrNativeAsset indicates an asset pool keyed by the native asset id.
	ErrNativeAsset = errors.New("splitter: native asset id is not an alternate asset")

	// ErrPoolExists indicates a pool is already initialised under the key.
	ErrPoolExists = errors.New("splitter: pool already exists")

	// ErrPoolNotFound indicates no pool is initialised under the key.
	ErrPoolNotFound = errors.New("splitter: pool not found")

	// ErrInvalidPoolData indicates a stored pool record is malformed.
	ErrInvalidPoolData = errors.New("splitter: invalid pool record data")
)
