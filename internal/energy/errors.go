package energy

import "errors"

// Sentinel errors for energy operations.
var (
	// ErrInvalidTransfer covers structurally bad requests: missing device
	// IDs, non-positive or non-finite amounts, or a self-transfer.
	ErrInvalidTransfer = errors.New("energy: invalid transfer request")

	// ErrForbidden is returned when the caller's bound device is not the
	// transfer source.
	ErrForbidden = errors.New("energy: source device not owned by caller")

	// ErrInsufficientFunds is returned when the source balance cannot cover
	// the requested amount. The check runs under the pair lock, so a
	// rejected transfer mutates nothing.
	ErrInsufficientFunds = errors.New("energy: insufficient funds")
)
