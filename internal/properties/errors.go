package properties

import "errors"

var (
	// ErrPropertyNotFound is returned when no listing matches the lookup.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrImageNotFound is returned when an image id does not exist.
	ErrImageNotFound = errors.New("property image not found")
)
