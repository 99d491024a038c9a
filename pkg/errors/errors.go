// Package errors provides structured error handling for ethlite.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess = 0 // Successful execution
	ExitGeneral = 1 // General/unknown error
	ExitInput   = 2 // Invalid input
	ExitSigning = 3 // Signing failed
	ExitNetwork = 4 // Transport or node rejected the request
)

// EthliteError is the structured error type for ethlite.
type EthliteError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *EthliteError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *EthliteError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for EthliteError.
func (e *EthliteError) Is(target error) bool {
	var t *EthliteError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

const codeGeneral = "GENERAL_ERROR"

func sentinel(code, message string, exit int) *EthliteError {
	return &EthliteError{Code: code, Message: message, ExitCode: exit}
}

// Sentinel errors.
var (
	ErrGeneral = sentinel(codeGeneral, "an error occurred", ExitGeneral)

	// ErrInvalidInput is returned when a value cannot be normalized to bytes.
	ErrInvalidInput = sentinel("INVALID_INPUT", "invalid input", ExitInput)

	// Codec errors.
	ErrArityMismatch      = sentinel("ARITY_MISMATCH", "types and values have different lengths", ExitInput)
	ErrUnsupportedType    = sentinel("UNSUPPORTED_TYPE", "unsupported ABI type", ExitInput)
	ErrInvalidBytesLength = sentinel("INVALID_BYTES_LENGTH", "fixed bytes value has the wrong length", ExitInput)
	ErrNegativeValue      = sentinel("NEGATIVE_VALUE", "negative numbers are not supported", ExitInput)

	// Key and signing errors.
	ErrSigningFailure    = sentinel("SIGNING_FAILURE", "signing failed", ExitSigning)
	ErrInvalidAddress    = sentinel("INVALID_ADDRESS", "invalid address format", ExitInput)
	ErrInvalidPrivateKey = sentinel("INVALID_PRIVATE_KEY", "private key must be 32 bytes", ExitInput)

	// Transport errors.
	ErrNetworkError  = sentinel("NETWORK_ERROR", "network communication failed", ExitNetwork)
	ErrTxRejected    = sentinel("TX_REJECTED", "transaction rejected by network", ExitNetwork)
	ErrChainMismatch = sentinel("CHAIN_MISMATCH", "transaction chain ID does not match the node", ExitInput)

	// Config errors.
	ErrConfigNotFound   = sentinel("CONFIG_NOT_FOUND", "configuration file not found", ExitInput)
	ErrConfigInvalid    = sentinel("CONFIG_INVALID", "configuration file is invalid", ExitInput)
	ErrUnknownConfigKey = sentinel("UNKNOWN_CONFIG_KEY", "unknown config key", ExitInput)
)

// New creates a new EthliteError with the given code and message.
func New(code, message string) *EthliteError {
	return sentinel(code, message, ExitGeneral)
}

// derive copies the EthliteError found in err's chain and applies edit to
// the copy. A plain error becomes a general error with err as its cause.
func derive(err error, edit func(e *EthliteError, structured bool)) error {
	if err == nil {
		return nil
	}

	var ee *EthliteError
	structured := errors.As(err, &ee)
	out := &EthliteError{Code: codeGeneral, Message: err.Error(), Cause: err, ExitCode: ExitGeneral}
	if structured {
		clone := *ee
		out = &clone
	}
	edit(out, structured)
	return out
}

// Wrap prefixes err's message with context, keeping its code and exit code.
// A structured err keeps its own cause so Error does not repeat the message;
// a plain err becomes the cause of a general error.
func Wrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return derive(err, func(e *EthliteError, structured bool) {
		if structured {
			e.Message = msg + ": " + e.Message
			return
		}
		e.Message = msg
	})
}

// WithDetails replaces the details of err.
func WithDetails(err error, details map[string]string) error {
	return derive(err, func(e *EthliteError, _ bool) { e.Details = details })
}

// WithSuggestion sets the hint shown under err.
func WithSuggestion(err error, suggestion string) error {
	return derive(err, func(e *EthliteError, _ bool) { e.Suggestion = suggestion })
}

// WithCause attaches an underlying cause to a sentinel error, keeping its code.
func WithCause(err, cause error) error {
	var ee *EthliteError
	if err != nil && !errors.As(err, &ee) {
		return fmt.Errorf("%w: %w", err, cause)
	}
	return derive(err, func(e *EthliteError, _ bool) { e.Cause = cause })
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *EthliteError
	if errors.As(err, &ee) {
		return ee.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ee *EthliteError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return codeGeneral
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
