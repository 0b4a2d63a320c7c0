// Package faults defines the error taxonomy shared by the conversion
// pipeline. Configuration mistakes and broken internal invariants are fatal
// and travel up the call stack as typed errors; anything recoverable is
// logged where it happens and processing continues.
package faults

import (
	goerrors "errors"
	"fmt"

	"github.com/gruntwork-io/go-commons/errors"
)

// ConfigError reports an invalid conversion configuration, e.g. an empty
// time-signature list or an unknown marker name in a score file.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// Configf builds a ConfigError with a stack trace attached.
func Configf(format string, args ...interface{}) error {
	return errors.WithStackTrace(&ConfigError{Reason: fmt.Sprintf(format, args...)})
}

// InvariantError reports a broken internal invariant, e.g. a bar whose
// content duration disagrees with its time signature, or a dangling leaf
// path.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Reason)
}

// Invariantf builds an InvariantError with a stack trace attached.
func Invariantf(format string, args ...interface{}) error {
	return errors.WithStackTrace(&InvariantError{Reason: fmt.Sprintf(format, args...)})
}

// IsConfig reports whether err is (or wraps) a ConfigError.
func IsConfig(err error) bool {
	var target *ConfigError
	return goerrors.As(errors.Unwrap(err), &target) || goerrors.As(err, &target)
}

// IsInvariant reports whether err is (or wraps) an InvariantError.
func IsInvariant(err error) bool {
	var target *InvariantError
	return goerrors.As(errors.Unwrap(err), &target) || goerrors.As(err, &target)
}
