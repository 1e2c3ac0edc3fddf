// Package spend implements coin selection, fee estimation and transaction
// construction for forwarding confirmed order payments.
package spend

import "errors"

// Spend errors. All are per-attempt: the reconciliation loop abandons the
// attempt and recomputes from fresh UTXO state on its next pass.
var (
	// ErrInvalidAddress means the recipient failed syntactic validation
	// for the active network. Returned before any I/O.
	ErrInvalidAddress = errors.New("invalid recipient address")

	// ErrInsufficientFunds means the spendable UTXOs cannot cover
	// amount + fee.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvariant marks a malformed spend plan (no inputs, no outputs,
	// more than two outputs). It indicates a coin-selection bug, not a
	// transient condition.
	ErrInvariant = errors.New("spend invariant violation")
)
