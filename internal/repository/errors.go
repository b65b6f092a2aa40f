package repository

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrHoldExpired  = errors.New("hold expired")
	ErrHoldNotFound = errors.New("hold not found")
	// ErrUnavailable marks connection-level store failures so callers can
	// distinguish "cannot check right now" from "no availability".
	ErrUnavailable = errors.New("store unavailable")
)
