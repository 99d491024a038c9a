package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	ethlerr "github.com/ananthanir/ethlite/pkg/errors"
)

// Transport conditions that trigger another attempt.
var (
	ErrRetryable   = &ethlerr.EthliteError{Code: "RETRYABLE_ERROR", Message: "retryable error", ExitCode: ethlerr.ExitNetwork}
	ErrTimeout     = &ethlerr.EthliteError{Code: "TIMEOUT", Message: "operation timed out", ExitCode: ethlerr.ExitNetwork}
	ErrRateLimited = &ethlerr.EthliteError{Code: "RATE_LIMITED", Message: "rate limited by node", ExitCode: ethlerr.ExitNetwork}
)

// RetryConfig is an exponential backoff policy with jitter.
type RetryConfig struct {
	MaxAttempts int           // total attempts, the first one included
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // cap on any single delay

	// OnRetry, if set, runs before each repeated attempt.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns 4 attempts with delays of about 1s, 2s and 4s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 4, BaseDelay: time.Second, MaxDelay: 4 * time.Second}
}

// NoRetry performs a single attempt.
func NoRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 1}
}

// backoff returns the pause after the given zero-based attempt: the doubled
// base delay, capped at MaxDelay, with jitter in [d/2, d).
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := c.MaxDelay
	if attempt < 62 {
		if shifted := c.BaseDelay << attempt; shifted > 0 && shifted < d {
			d = shifted
		}
	}
	if d/2 <= 0 {
		return d
	}
	return d/2 + rand.N(d/2) //nolint:gosec // G404: jitter does not need a CSPRNG
}

// Do runs op until it succeeds, returns an error IsRetryable rejects, or
// the attempts run out. Cancelling ctx aborts the wait between attempts.
func Do[T any](ctx context.Context, cfg RetryConfig, op func() (T, error)) (T, error) {
	attempts := max(cfg.MaxAttempts, 1)

	var (
		result T
		err    error
	)
	for attempt := range attempts {
		if attempt > 0 {
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, err)
			}
			timer := time.NewTimer(cfg.backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}

		if result, err = op(); err == nil || !IsRetryable(err) {
			return result, err
		}
	}

	if attempts == 1 {
		return result, err
	}
	return result, fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	for _, target := range []error{ErrRetryable, ErrTimeout, ErrRateLimited, context.DeadlineExceeded} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ParseRetryAfter reads a Retry-After header given either as seconds or as
// an HTTP date. Missing, malformed and past values yield 0.
func ParseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(max(seconds, 0)) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}

// WrapRetryable marks err as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}
