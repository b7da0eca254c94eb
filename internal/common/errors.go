package common

import (
	"errors"
	"fmt"
)

// Error taxonomy for the extraction pipeline. Callers classify failures with
// errors.Is; messages carry the human-readable detail.
var (
	// ErrValidation marks malformed batch-level input, rejected before any
	// processing starts. The only error kind that escapes to transport.
	ErrValidation = errors.New("validation failed")

	// ErrGeometry marks a bounding box that failed validation. Degrades a
	// single field, never an item.
	ErrGeometry = errors.New("invalid bounding box")

	// ErrCrop marks a crop that produced a degenerate rectangle or a codec
	// failure. Degrades a single field, never an item.
	ErrCrop = errors.New("crop failed")

	// ErrInvocation marks a transport, remote, or timeout failure from the
	// inference invoker.
	ErrInvocation = errors.New("invocation failed")

	// ErrMalformedResponse marks an invoker reply whose content did not
	// parse or validate against the stage schema.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrGateRejected marks an item stopped by a confidence gate. Terminal
	// for the item, not an error to the batch caller.
	ErrGateRejected = errors.New("confidence gate rejected")
)

// AppError carries a stable code alongside the message and cause.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapError annotates err with a message, preserving the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
