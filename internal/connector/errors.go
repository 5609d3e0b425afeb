package connector

import "errors"

// Domain errors for the connector package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, connector.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a connector ID does not exist.
	ErrNotFound = errors.New("connector: not found")

	// ErrExists is returned when creating a connector with an ID that already exists.
	ErrExists = errors.New("connector: already exists")

	// ErrInvalidCategory is returned when a category value is not recognised.
	ErrInvalidCategory = errors.New("connector: invalid category")

	// ErrInvalidName is returned when a connector name is empty.
	ErrInvalidName = errors.New("connector: invalid name")

	// ErrConfigParse is returned when a stored config blob is not valid JSON.
	ErrConfigParse = errors.New("connector: config parse failed")

	// ErrConfigIncomplete is returned when a parsed config is missing
	// category-specific required fields.
	ErrConfigIncomplete = errors.New("connector: config incomplete")
)
