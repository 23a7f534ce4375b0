package models

import "fmt"

// TransportError is a non-success response from the quote service. The
// status code is surfaced to the user as part of a retryable failure.
type TransportError struct {
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("quote service returned status %d", e.StatusCode)
}

// CoercionError is a close price or timestamp that failed to parse. It fails
// the whole normalization for that fetch rather than letting NaN corrupt the
// derived statistics.
type CoercionError struct {
	Field string
	Value string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s value %q", e.Field, e.Value)
}
