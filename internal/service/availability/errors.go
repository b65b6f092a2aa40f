package availability

import "errors"

var (
	ErrVenueNotFound   = errors.New("venue not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrValidation      = errors.New("validation failed")
	// ErrStoreUnavailable means the backing store could not be reached.
	// Callers must surface it as "try again", never as "fully booked".
	ErrStoreUnavailable = errors.New("availability store unavailable")
)
