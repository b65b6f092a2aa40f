package hold

import "errors"

var (
	// ErrSlotTaken is the expected, recoverable conflict outcome: another
	// guest claimed an overlapping interval first. Callers reoffer
	// alternative slots instead of treating it as a failure.
	ErrSlotTaken       = errors.New("slot already taken")
	ErrHoldNotFound    = errors.New("hold not found")
	ErrHoldExpired     = errors.New("hold expired")
	ErrVenueNotFound   = errors.New("venue not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrValidation      = errors.New("validation failed")
	ErrRateLimited     = errors.New("rate limited")
)
