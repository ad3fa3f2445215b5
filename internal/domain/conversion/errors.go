package conversion

import "errors"

// Sentinel kinds for conversion errors.
var (
	ErrNoConversion = errors.New("no conversion found")
	ErrOutOfRange   = errors.New("converted value out of range")
)
