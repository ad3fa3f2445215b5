package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingUnits  = errors.New("missing units")
	ErrNoConversion  = errors.New("no conversion found")
	ErrNotReady      = errors.New("service not ready")
)

// Literal messages returned to clients for each error kind.
const (
	msgInvalidAmount = "Invalid or missing amount."
	msgMissingUnits  = "Both from_unit and to_unit are required."
	msgNoConversion  = "Invalid conversion parameters or missing conversion factor for the given ingredient."
	msgNotReady      = "Service is starting."
)

// errorKinds maps each sentinel to its client message and metrics label.
var errorKinds = []struct {
	err     error
	message string
	kind    string
}{
	{ErrInvalidAmount, msgInvalidAmount, "invalid_amount"},
	{ErrMissingUnits, msgMissingUnits, "missing_units"},
	{ErrNoConversion, msgNoConversion, "no_conversion"},
	{ErrNotReady, msgNotReady, "not_ready"},
}

// describe returns the client message and metrics label for err.
func describe(err error) (message, kind string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.message, k.kind
		}
	}
	return err.Error(), "unknown"
}
