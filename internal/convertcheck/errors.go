package convertcheck

import "errors"

// Sentinel kinds for check errors.
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrChecksFailed       = errors.New("conversion checks failed")
	ErrLoadCases          = errors.New("load cases failed")
)
