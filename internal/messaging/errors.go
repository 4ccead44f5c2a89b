package messaging

import "fmt"

// UnhandledKindError is returned when a message kind is entirely absent
// from the handler table. A kind present with zero handlers is legal and
// dispatches to nothing; a missing kind is a wiring bug.
type UnhandledKindError struct {
	Kind Kind
}

// Error implements the error interface
func (e *UnhandledKindError) Error() string {
	return fmt.Sprintf("no handlers registered for message kind %q", string(e.Kind))
}

// HandlerError wraps a failure inside one handler. Dispatch stops at the
// first failing handler and the error propagates to the driver; a broken
// observability layer ends the run rather than silently losing data.
type HandlerError struct {
	Kind    Kind
	Handler int
	Err     error
}

// Error implements the error interface
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %d for message kind %q failed: %v", e.Handler, string(e.Kind), e.Err)
}

// Unwrap returns the underlying handler error
func (e *HandlerError) Unwrap() error {
	return e.Err
}
