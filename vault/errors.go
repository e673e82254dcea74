package vault

import "errors"

var (
	// ErrInvalidAmount indicates a zero amount was moved.
	ErrInvalidAmount = errors.New("vault: amount must be positive")

	// ErrInsufficientFunds indicates the source balance is below the amount.
	ErrInsufficientFunds = errors.New("vault: insufficient funds")

	// ErrBalanceOverflow indicates a credit would overflow the destination balance.
	ErrBalanceOverflow = errors.New("vault: balance overflow")

	// ErrCustodyAccount indicates a direct transfer out of a program-owned account.
	ErrCustodyAccount = errors.New("vault: account is held in custody")

	// ErrNotCustodian indicates a program tried to release from an account it does not own.
	ErrNotCustodian = errors.New("vault: program is not the custodian")

	// ErrCustodyExists indicates a custody account was opened twice.
	ErrCustodyExists = errors.New("vault: custody account already open")

	// ErrCustodyNotFound indicates a release from an account that was never opened.
	ErrCustodyNotFound = errors.New("vault: custody account not found")

	// ErrProgramExists indicates a program name was registered twice.
	ErrProgramExists = errors.New("vault: program already registered")

	// ErrInvalidBalanceData indicates a stored balance is malformed.
	ErrInvalidBalanceData = errors.New("vault: invalid balance data")
)
