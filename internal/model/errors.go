package model

import "errors"

var (
	// ErrDataUnavailable marks empty or missing provider data. It degrades a
	// candidate, it never aborts a run.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrMalformedInput marks provider data that failed validation.
	ErrMalformedInput = errors.New("malformed input")
)
