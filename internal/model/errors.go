package model

import (
	"errors"
	"fmt"
)

// InvalidInputError reports a listing field whose value is outside its
// documented domain (e.g. a negative review count). It is raised per record
// and never aborts the rest of a batch.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: field %q value %v: %s", e.Field, e.Value, e.Reason)
}

// ConfigError reports a malformed scoring configuration (band tables,
// blocked-domain list, thresholds). Fatal at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// IsInvalidInput reports whether err wraps an InvalidInputError.
func IsInvalidInput(err error) bool {
	var iie *InvalidInputError
	return errors.As(err, &iie)
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
