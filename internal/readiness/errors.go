package readiness

import "fmt"

// Failure kinds reported per category.
const (
	KindMissingField = "MISSING_FIELD"
	KindParseError   = "PARSE_ERROR"
)

// MissingFieldError is returned when a scorer needs a field that the record
// does not carry.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// Kind returns KindMissingField.
func (e *MissingFieldError) Kind() string { return KindMissingField }

// FieldName returns the absent field.
func (e *MissingFieldError) FieldName() string { return e.Field }

// ParseError is returned when a numeric or percentage field cannot be parsed.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("field %q: cannot parse %q as a number: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kind returns KindParseError.
func (e *ParseError) Kind() string { return KindParseError }

// FieldName returns the offending field.
func (e *ParseError) FieldName() string { return e.Field }

// fieldError is implemented by both scorer error types.
type fieldError interface {
	error
	Kind() string
	FieldName() string
}
