package ledger

import (
	"context"
	"errors"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/registry"
	"github.com/bitfsorg/libibom-go/revshare"
	"github.com/bitfsorg/libibom-go/splitter"
	"github.com/bitfsorg/libibom-go/vault"
)

// Error codes reported to clients.
const (
	CodeURITooLong           = "UriTooLong"
	CodeTooManyCreators      = "TooManyCreators"
	CodeTooManyMembers       = "TooManyMembers"
	CodeTooManyEntries       = "TooManyEntries"
	CodeInvalidSharesSum     = "InvalidSharesSum"
	CodeDuplicateBeneficiary = "DuplicateBeneficiary"
	CodeUnauthorized         = "Unauthorized"
	CodeInvalidAmount        = "InvalidAmount"
	CodeNotAMember           = "NotAMember"
	CodeNothingToClaim       = "NothingToClaim"
	CodeWrongPoolKind        = "WrongPoolKind"
	CodeNativeAsset          = "InvalidAsset"
	CodeWorkExists           = "WorkExists"
	CodeWorkNotFound         = "WorkNotFound"
	CodePoolExists           = "PoolExists"
	CodePoolNotFound         = "PoolNotFound"
	CodeInsufficientFunds    = "InsufficientFunds"
	CodeBalanceOverflow      = "BalanceOverflow"
	CodeInvalidIdentity      = "InvalidIdentity"
	CodeFaucetDisabled       = "FaucetDisabled"
	CodeCanceled             = "Canceled"
	CodeInternal             = "Internal"
)

// codeTable is checked in order; wrapping errors come before the errors they wrap.
var codeTable = []struct {
	err  error
	code string
}{
	{registry.ErrURITooLong, CodeURITooLong},
	{registry.ErrTooManyCreators, CodeTooManyCreators},
	{splitter.ErrTooManyMembers, CodeTooManyMembers},
	{revshare.ErrTooManyEntries, CodeTooManyEntries},
	{revshare.ErrInvalidSharesSum, CodeInvalidSharesSum},
	{revshare.ErrDuplicateBeneficiary, CodeDuplicateBeneficiary},
	{auth.ErrUnauthorized, CodeUnauthorized},
	{splitter.ErrInvalidAmount, CodeInvalidAmount},
	{vault.ErrInvalidAmount, CodeInvalidAmount},
	{splitter.ErrNotAMember, CodeNotAMember},
	{splitter.ErrNothingToClaim, CodeNothingToClaim},
	{splitter.ErrWrongPoolKind, CodeWrongPoolKind},
	{splitter.ErrNativeAsset, CodeNativeAsset},
	{registry.ErrWorkExists, CodeWorkExists},
	{registry.ErrWorkNotFound, CodeWorkNotFound},
	{splitter.ErrPoolExists, CodePoolExists},
	{splitter.ErrPoolNotFound, CodePoolNotFound},
	{vault.ErrInsufficientFunds, CodeInsufficientFunds},
	{vault.ErrBalanceOverflow, CodeBalanceOverflow},
	{identity.ErrInvalidID, CodeInvalidIdentity},
	{ErrFaucetDisabled, CodeFaucetDisabled},
	{context.Canceled, CodeCanceled},
	{context.DeadlineExceeded, CodeCanceled},
}

// Code maps err to its client-facing code. Unknown errors are Internal.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codeTable {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// IsRejection reports whether err is a request the caller must fix, as
// opposed to a failure of the ledger itself.
func IsRejection(err error) bool {
	switch Code(err) {
	case "", CodeInternal, CodeCanceled:
		return false
	}
	return true
}
