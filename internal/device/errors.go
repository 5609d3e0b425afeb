package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a device does not exist.
	ErrNotFound = errors.New("device: not found")

	// ErrServerNotFound is returned when a Piko server does not exist.
	ErrServerNotFound = errors.New("device: server not found")

	// ErrInvalidName is returned when a device name is empty.
	ErrInvalidName = errors.New("device: invalid name")
)
