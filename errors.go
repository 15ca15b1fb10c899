package aifunc

import (
	"errors"
	"fmt"
)

// Sentinel errors for aifunc. Use errors.Is to check.
var (
	ErrNotFound          = errors.New("function not found")
	ErrValidation        = errors.New("validation failed")
	ErrNotImplemented    = errors.New("function has no implementation")
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	ErrShutdown          = errors.New("registry is shutting down")
)

// NotFoundError is returned when a call references a name that was never registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("function %q is not registered", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Phase tells whether a ValidationError was raised for the arguments or for the result.
type Phase string

const (
	PhaseInput  Phase = "input"
	PhaseOutput Phase = "output"
)

// ValidationError reports arguments (before execution) or a result (after execution)
// that do not match the descriptor tree. The message is meant to be sent back to the
// agent so it can correct the call and retry.
//
// Position is the zero-based index of the offending argument, or -1 when the failure
// is not tied to one argument (malformed JSON, too many arguments, output).
type ValidationError struct {
	Function string
	Param    string
	Position int
	Phase    Phase
	Reason   string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Phase == PhaseOutput:
		return fmt.Sprintf("invalid result of %s: %s", e.Function, e.Reason)
	case e.Param != "":
		return fmt.Sprintf("invalid argument %d (%s) of %s: %s", e.Position, e.Param, e.Function, e.Reason)
	default:
		return fmt.Sprintf("invalid arguments of %s: %s", e.Function, e.Reason)
	}
}

// Unwrap supports errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

// ImplementationError wraps a failure of the bound implementation. The original error
// stays reachable through Unwrap, so errors.Is and errors.As see it unchanged.
type ImplementationError struct {
	Function string
	Err      error
}

func (e *ImplementationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Function, e.Err)
}

func (e *ImplementationError) Unwrap() error { return e.Err }

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound returns true if err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsImplementationError returns true if err is or wraps an ImplementationError.
func IsImplementationError(err error) bool {
	var ie *ImplementationError
	return errors.As(err, &ie)
}

// wrapImplementationError passes through ValidationError and ImplementationError;
// everything else is wrapped as ImplementationError.
func wrapImplementationError(name string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidationError(err) || IsImplementationError(err) {
		return err
	}
	return &ImplementationError{Function: name, Err: err}
}

// panicError wraps a recovered panic value; used by Registry and the WithRecovery middleware.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
