package rpc_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ananthanir/ethlite/internal/eth/rpc"
)

var errPermanent = errors.New("execution reverted")

func quickRetry(attempts int) rpc.RetryConfig {
	return rpc.RetryConfig{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

// flaky fails with err for the first n calls.
func flaky(n int, err error) (op func() (string, error), calls *int) {
	calls = new(int)
	return func() (string, error) {
		*calls++
		if *calls <= n {
			return "", err
		}
		return "0x1", nil
	}, calls
}

func TestDo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       rpc.RetryConfig
		failures  int
		err       error
		wantCalls int
		wantErr   error
		wrapped   bool
	}{
		{"first try", quickRetry(4), 0, nil, 1, nil, false},
		{"recovers", quickRetry(4), 2, rpc.ErrRetryable, 3, nil, false},
		{"permanent", quickRetry(4), 9, errPermanent, 1, errPermanent, false},
		{"exhausted", quickRetry(4), 9, rpc.ErrRateLimited, 4, rpc.ErrRateLimited, true},
		{"no retry", rpc.NoRetry(), 9, rpc.ErrTimeout, 1, rpc.ErrTimeout, false},
		{"zero config", rpc.RetryConfig{}, 9, rpc.ErrTimeout, 1, rpc.ErrTimeout, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			op, calls := flaky(tt.failures, tt.err)
			got, err := rpc.Do(context.Background(), tt.cfg, op)

			assert.Equal(t, tt.wantCalls, *calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "0x1", got)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wrapped {
				assert.Contains(t, err.Error(), "after 4 attempts")
			} else {
				assert.NotContains(t, err.Error(), "attempts")
			}
		})
	}
}

func TestDo_OnRetry(t *testing.T) {
	t.Parallel()

	var seen []int
	cfg := quickRetry(4)
	cfg.OnRetry = func(attempt int, err error) {
		seen = append(seen, attempt)
		assert.ErrorIs(t, err, rpc.ErrRetryable)
	}

	op, _ := flaky(2, rpc.ErrRetryable)
	_, err := rpc.Do(context.Background(), cfg, op)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestDo_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := rpc.RetryConfig{MaxAttempts: 4, BaseDelay: time.Hour, MaxDelay: time.Hour}
	cfg.OnRetry = func(int, error) { cancel() }

	op, calls := flaky(9, rpc.ErrRetryable)
	_, err := rpc.Do(ctx, cfg, op)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, *calls)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	for _, err := range []error{
		rpc.ErrRetryable, rpc.ErrTimeout, rpc.ErrRateLimited,
		context.DeadlineExceeded, rpc.WrapRetryable(errPermanent),
	} {
		assert.True(t, rpc.IsRetryable(err), "%v", err)
	}
	assert.False(t, rpc.IsRetryable(errPermanent))
	assert.False(t, rpc.IsRetryable(nil))
	assert.NoError(t, rpc.WrapRetryable(nil))
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	for header, want := range map[string]time.Duration{
		"5":     5 * time.Second,
		" 120 ": 2 * time.Minute,
		"0":     0,
		"-3":    0,
		"":      0,
		"soon":  0,
	} {
		assert.Equal(t, want, rpc.ParseRetryAfter(header), "header %q", header)
	}

	assert.Zero(t, rpc.ParseRetryAfter("Mon, 02 Jan 2006 15:04:05 GMT"), "past date")

	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	d := rpc.ParseRetryAfter(future)
	assert.Greater(t, d, 50*time.Second)
	assert.LessOrEqual(t, d, time.Minute)
}
