package manager

import (
	"errors"
	"net/http"
)

// invalidInputError marks a request the client can fix (missing field,
// bytes that are not an image). The HTTP layer returns 400.
type invalidInputError struct{ msg string }

func (e invalidInputError) Error() string   { return "invalid input: " + e.msg }
func (e invalidInputError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidInput constructs an invalidInputError.
func ErrInvalidInput(msg string) error { return invalidInputError{msg: msg} }

// IsInvalidInput reports whether err was caused by unusable client input.
func IsInvalidInput(err error) bool {
	var e invalidInputError
	return errors.As(err, &e)
}

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ reason string }

func (e tooBusyError) Error() string { return "too busy: " + e.reason }

// ErrTooBusy constructs a tooBusyError for the given admission stage.
func ErrTooBusy(reason string) error { return tooBusyError{reason: reason} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// TooBusyReason returns the admission stage that rejected the request.
func TooBusyReason(err error) string {
	var e tooBusyError
	if errors.As(err, &e) {
		return e.reason
	}
	return ""
}

// dependencyUnavailableError signals a missing runtime dependency (the
// onnxruntime library, or no classifier loaded yet) so the HTTP layer can
// return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// incompatibleRuntimeMessage is shown when the artifact needs an accelerator
// this host does not provide.
const incompatibleRuntimeMessage = "this model needs an execution provider that is not available on this host " +
	"(it was exported or configured for GPU inference). Re-export the model for CPU inference, " +
	"or set accelerator: cpu in the configuration, and restart"

// incompatibleRuntimeError is a startup failure caused by the execution
// environment rather than by the artifact itself.
type incompatibleRuntimeError struct{ cause error }

func (e incompatibleRuntimeError) Error() string {
	if e.cause == nil {
		return incompatibleRuntimeMessage
	}
	return incompatibleRuntimeMessage + ": " + e.cause.Error()
}

func (e incompatibleRuntimeError) Unwrap() error { return e.cause }

// ErrIncompatibleRuntime wraps cause as an incompatible runtime error.
func ErrIncompatibleRuntime(cause error) error { return incompatibleRuntimeError{cause: cause} }

// IsIncompatibleRuntime reports whether loading failed because the host lacks
// a capability the artifact requires.
func IsIncompatibleRuntime(err error) bool {
	var e incompatibleRuntimeError
	return errors.As(err, &e)
}

// errEmptyLabel is returned when a classifier produces no label.
var errEmptyLabel = errors.New("classifier returned an empty label")
