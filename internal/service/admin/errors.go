package admin

import "errors"

var (
	ErrVenueConflict   = errors.New("venue conflict")
	ErrVenueNotFound   = errors.New("venue not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrTablesConflict  = errors.New("tables conflict")
	ErrServiceConflict = errors.New("service conflict")
	ErrWindowConflict  = errors.New("booking window conflict")
	ErrValidation      = errors.New("validation failed")
)
