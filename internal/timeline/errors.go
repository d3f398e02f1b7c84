package timeline

import (
	"errors"
	"fmt"
)

// ErrMalformedDescription is returned when a non-empty description does not
// contain the expected label/body update structure.
var ErrMalformedDescription = errors.New("description does not match the expected update structure")

// ParseError reports a date or time string that could not be resolved to an
// absolute instant. Input carries the offending substring for diagnostics.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(input string, format string, args ...any) *ParseError {
	return &ParseError{Input: input, Err: fmt.Errorf(format, args...)}
}
