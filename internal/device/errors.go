package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle unknown device id
//	}
var (
	// ErrNotFound is returned when a device ID does not exist in the registry.
	ErrNotFound = errors.New("device: not found")

	// ErrSameDevice is returned when a pair operation names the same device twice.
	ErrSameDevice = errors.New("device: pair must name two distinct devices")

	// ErrInvalidProvisioning is returned when the provisioning file fails validation.
	ErrInvalidProvisioning = errors.New("device: invalid provisioning")
)
