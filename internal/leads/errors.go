package leads

import "errors"

var (
	// ErrLeadNotFound is returned when no lead matches the lookup.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrPropertyNotFound is returned when a submission references a
	// listing that does not exist.
	ErrPropertyNotFound = errors.New("referenced property not found")

	// ErrInvalidStatus is returned for status values outside the known set.
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrInvalidTransition is returned when a status update would move a
	// lead backwards.
	ErrInvalidTransition = errors.New("invalid lead status transition")
)
