package retry

import (
	"fmt"
	"strings"
)

// MultiError aggregates the errors of all failed attempts
type MultiError struct {
	Errors   []error // errors from each attempt
	Attempts int     // number of attempts performed
}

// Error implements the error interface (reports the last error)
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "retry failed: no errors"
	}

	return e.Errors[len(e.Errors)-1].Error()
}

// Unwrap implements errors.Unwrap (returns the last error)
func (e *MultiError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// AllErrors returns a string listing every attempt's error
func (e *MultiError) AllErrors() string {
	if len(e.Errors) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("retry failed after %d attempts:", e.Attempts))
	for i, err := range e.Errors {
		b.WriteString(fmt.Sprintf("\n  attempt %d: %v", i+1, err))
	}

	return b.String()
}

// LastError returns the error of the final attempt
func (e *MultiError) LastError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// FirstError returns the error of the first attempt
func (e *MultiError) FirstError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}
