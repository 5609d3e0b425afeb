package location

import "errors"

var (
	// ErrSiteNotFound is returned when a site ID does not exist.
	ErrSiteNotFound = errors.New("site not found")

	// ErrSpaceNotFound is returned when a space ID does not exist.
	ErrSpaceNotFound = errors.New("space not found")

	// ErrInvalidName is returned when a site or space name fails validation.
	ErrInvalidName = errors.New("invalid name")
)
