package phemap

import (
	"errors"
	"fmt"
)

// NotFoundError reports a query that matched zero rows, or a query key
// that could not be parsed into the numeric form required for matching.
// It always carries the original key for diagnostics. Callers may treat
// it as "no mapping exists" and continue.
type NotFoundError struct {
	// Kind names the thing looked up: "phecode" or "icd10".
	Kind string

	// Key is the query key exactly as supplied by the caller.
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// MalformedInputError reports a numeric-bearing field of the reference
// data that could not be parsed: a phecode at load time, or an exclusion
// range at first use. It is not recoverable without correcting the
// source data.
type MalformedInputError struct {
	// Field is the canonical column name, e.g. "phecode" or
	// "phecode_exclude_range".
	Field string

	// Value is the offending field content.
	Value string

	// Line is the 1-based data row number when known, 0 otherwise.
	Line int

	// Err is the underlying parse error, if any.
	Err error
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed %s %q at row %d", e.Field, e.Value, e.Line)
	}
	return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsMalformedInput reports whether err is a *MalformedInputError.
func IsMalformedInput(err error) bool {
	var mi *MalformedInputError
	return errors.As(err, &mi)
}
