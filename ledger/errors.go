package ledger

import "errors"

// ErrFaucetDisabled indicates a credit request on a ledger without a faucet.
var ErrFaucetDisabled = errors.New("ledger: faucet disabled")
