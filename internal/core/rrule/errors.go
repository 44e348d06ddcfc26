package rrule

import "fmt"

// ValidationError reports structured fields that cannot form a rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid recurrence rule: %s: %s", e.Field, e.Reason)
}

// ParseError reports a serialized rule that cannot be decoded.
// Err carries the underlying ValidationError when the tags decoded but the
// resulting fields were invalid.
type ParseError struct {
	Input  string
	Tag    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("parse rrule %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("parse rrule %q: %s: %s", e.Input, e.Tag, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
