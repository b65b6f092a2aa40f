package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrCancelWindow    = errors.New("cancellation window has closed")
	ErrAlreadyFinal    = errors.New("booking already in a terminal status")
)
