package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClosed is returned when a registry is used after CloseAll.
var ErrClosed = errors.New("registry is closed")

// UnregisteredError is returned by Get for a key that was never registered.
type UnregisteredError struct {
	Key Key
}

// Error implements the error interface
func (e *UnregisteredError) Error() string {
	return fmt.Sprintf("service %q is not registered", string(e.Key))
}

// DuplicateRegistrationError is returned when a key is registered a second
// time, or re-registered after it was already resolved.
type DuplicateRegistrationError struct {
	Key Key
}

// Error implements the error interface
func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("service %q is already registered", string(e.Key))
}

// WrongTypeError is returned by Resolve when the stored instance does not
// have the requested type.
type WrongTypeError struct {
	Key  Key
	Want string
	Got  string
}

// Error implements the error interface
func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("service %q has type %s, not %s", string(e.Key), e.Got, e.Want)
}

// CleanupFailure records one cleanup hook that failed during CloseAll.
type CleanupFailure struct {
	Key Key
	Err error
}

// CleanupError aggregates every cleanup failure from a CloseAll pass. It is
// returned only after every hook has been attempted.
type CleanupError struct {
	Failures []CleanupFailure
}

// Error implements the error interface
func (e *CleanupError) Error() string {
	keys := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		keys[i] = string(f.Key)
	}
	return fmt.Sprintf("cleanup failed for %d service(s) [%s]: %v",
		len(e.Failures), strings.Join(keys, ", "), e.Failures[0].Err)
}

// Unwrap exposes the underlying cleanup errors to errors.Is and errors.As.
func (e *CleanupError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
