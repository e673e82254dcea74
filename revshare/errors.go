package revshare

import "errors"

var (
	// ErrTooManyEntries indicates a share table has more than MaxEntries rows.
	ErrTooManyEntries = errors.New("revshare: too many entries")

	// ErrInvalidSharesSum indicates the basis points do not add up to TotalBP.
	ErrInvalidSharesSum = errors.New("revshare: shares must sum to 10000 bp")

	// ErrDuplicateBeneficiary indicates the same identity appears twice in a table.
	ErrDuplicateBeneficiary = errors.New("revshare: duplicate beneficiary")

	// ErrInvalidTableData indicates a serialized share table is malformed.
	ErrInvalidTableData = errors.New("revshare: invalid share table data")

	// ErrInvalidLedgerData indicates a serialized claim ledger is malformed.
	ErrInvalidLedgerData = errors.New("revshare: invalid claim ledger data")

	// ErrLedgerFull indicates a claim ledger has no free slot for a new member.
	ErrLedgerFull = errors.New("revshare: claim ledger full")

	// ErrInvalidShareSpec indicates a textual share list could not be parsed.
	ErrInvalidShareSpec = errors.New("revshare: invalid share spec")
)
