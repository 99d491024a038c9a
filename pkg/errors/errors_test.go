package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

var (
	errInner = errors.New("inner")
	errPlain = errors.New("plain error")
)

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, ethlerr.ExitSuccess},
		{"general error", ethlerr.ErrGeneral, ethlerr.ExitGeneral},
		{"invalid input", ethlerr.ErrInvalidInput, ethlerr.ExitInput},
		{"arity mismatch", ethlerr.ErrArityMismatch, ethlerr.ExitInput},
		{"unsupported type", ethlerr.ErrUnsupportedType, ethlerr.ExitInput},
		{"bytes length", ethlerr.ErrInvalidBytesLength, ethlerr.ExitInput},
		{"negative value", ethlerr.ErrNegativeValue, ethlerr.ExitInput},
		{"signing failure", ethlerr.ErrSigningFailure, ethlerr.ExitSigning},
		{"network", ethlerr.ErrNetworkError, ethlerr.ExitNetwork},
		{"plain error", errPlain, ethlerr.ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ethlerr.ExitCode(tt.err))
		})
	}
}

func TestSentinelIdentitySurvivesWrapping(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ethlerr.ErrInvalidInput,
		ethlerr.ErrArityMismatch,
		ethlerr.ErrUnsupportedType,
		ethlerr.ErrInvalidBytesLength,
		ethlerr.ErrNegativeValue,
		ethlerr.ErrSigningFailure,
	}
	for _, s := range sentinels {
		wrapped := ethlerr.Wrap(s, "context")
		require.ErrorIs(t, wrapped, s)

		detailed := ethlerr.WithDetails(s, map[string]string{"index": "0"})
		require.ErrorIs(t, detailed, s)
	}

	assert.NotErrorIs(t, ethlerr.Wrap(ethlerr.ErrArityMismatch, "x"), ethlerr.ErrUnsupportedType)
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	t.Run("message only", func(t *testing.T) {
		t.Parallel()
		err := &ethlerr.EthliteError{Code: "TEST", Message: "something failed"}
		assert.Equal(t, "something failed", err.Error())
	})

	t.Run("details sorted", func(t *testing.T) {
		t.Parallel()
		err := &ethlerr.EthliteError{
			Code:    "TEST",
			Message: "failed",
			Details: map[string]string{"beta": "2", "alpha": "1"},
		}
		assert.Equal(t, "failed (alpha: 1) (beta: 2)", err.Error())
	})

	t.Run("details and cause", func(t *testing.T) {
		t.Parallel()
		err := &ethlerr.EthliteError{
			Code:    "TEST",
			Message: "outer",
			Details: map[string]string{"key": "val"},
			Cause:   errInner,
		}
		assert.Equal(t, "outer (key: val): inner", err.Error())
	})
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("keeps code and fields", func(t *testing.T) {
		t.Parallel()
		original := ethlerr.WithDetails(ethlerr.ErrUnsupportedType, map[string]string{"type": "uint7"})
		original = ethlerr.WithSuggestion(original, "did you mean uint256?")
		wrapped := ethlerr.Wrap(original, "argument %d", 1)

		var ee *ethlerr.EthliteError
		require.ErrorAs(t, wrapped, &ee)
		assert.Equal(t, "UNSUPPORTED_TYPE", ee.Code)
		assert.Equal(t, map[string]string{"type": "uint7"}, ee.Details)
		assert.Equal(t, "did you mean uint256?", ee.Suggestion)
		assert.Equal(t, "argument 1: unsupported ABI type", ee.Message)
		assert.Equal(t, "argument 1: unsupported ABI type (type: uint7)", wrapped.Error())
	})

	t.Run("nested context", func(t *testing.T) {
		t.Parallel()
		wrapped := ethlerr.Wrap(ethlerr.Wrap(ethlerr.ErrInvalidBytesLength, "argument %d", 0), "record %d", 2)

		var ee *ethlerr.EthliteError
		require.ErrorAs(t, wrapped, &ee)
		assert.Equal(t, "record 2: argument 0: fixed bytes value has the wrong length", ee.Message)
		require.ErrorIs(t, wrapped, ethlerr.ErrInvalidBytesLength)
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ethlerr.Wrap(nil, "context"))
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		wrapped := ethlerr.Wrap(errPlain, "context")
		var ee *ethlerr.EthliteError
		require.ErrorAs(t, wrapped, &ee)
		assert.Equal(t, "GENERAL_ERROR", ee.Code)
		assert.Equal(t, "context", ee.Message)
		assert.Equal(t, errPlain, ee.Cause)
	})
}

func TestWithCause(t *testing.T) {
	t.Parallel()

	err := ethlerr.WithCause(ethlerr.ErrSigningFailure, errInner)
	require.ErrorIs(t, err, ethlerr.ErrSigningFailure)
	require.ErrorIs(t, err, errInner)
	assert.Equal(t, "signing failed: inner", err.Error())

	assert.NoError(t, ethlerr.WithCause(nil, errInner))
}

func TestCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "INVALID_BYTES_LENGTH", ethlerr.Code(ethlerr.ErrInvalidBytesLength))
	assert.Equal(t, "GENERAL_ERROR", ethlerr.Code(errPlain))
	assert.Equal(t, "GENERAL_ERROR", ethlerr.Code(nil))
}

func TestNew(t *testing.T) {
	t.Parallel()
	err := ethlerr.New("CUSTOM_ERROR", "custom error message")
	assert.Equal(t, "custom error message", err.Error())
	assert.Equal(t, ethlerr.ExitGeneral, err.ExitCode)
}
