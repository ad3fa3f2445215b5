package repository

import "errors"

// Sentinel kinds for conversion table errors.
var (
	ErrLoadTable    = errors.New("load conversion table failed")
	ErrInvalidTable = errors.New("invalid conversion table")
)
