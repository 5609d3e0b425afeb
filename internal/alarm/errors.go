package alarm

import "errors"

var (
	// ErrZoneNotFound is returned when a zone ID does not exist.
	ErrZoneNotFound = errors.New("alarm: zone not found")

	// ErrInvalidName is returned when a zone name fails validation.
	ErrInvalidName = errors.New("alarm: invalid name")

	// ErrInvalidTransition is returned for arm/disarm requests that make
	// no sense from the zone's current state.
	ErrInvalidTransition = errors.New("alarm: invalid state transition")
)
