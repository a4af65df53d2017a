// Package retry re-runs bridge calls that failed for transient reasons, with
// exponential backoff bounded by the caller's context.
//
// Signing failures are never transient: a bad key or a mismatched signature
// produces the same answer on every attempt, so Transient only classifies
// transport-level failures as retryable.
package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/hawala-wallet/signcore"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts  int           // Maximum number of attempts (including initial attempt)
	InitialDelay time.Duration // Initial delay between retries
	MaxDelay     time.Duration // Maximum delay between retries
	Multiplier   float64       // Multiplier for exponential backoff
}

// DefaultConfig suits calls to a co-located signing service.
var DefaultConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2.0,
}

// Validate reports a config that would never run fn.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return signcore.Errorf(signcore.ErrInvalidInput, "retry: MaxAttempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Multiplier < 1 {
		return signcore.Errorf(signcore.ErrInvalidInput, "retry: Multiplier must be at least 1, got %g", c.Multiplier)
	}
	return nil
}

// Classifier decides whether an error should trigger another attempt.
type Classifier func(error) bool

// Transient reports whether err is worth retrying: network errors and
// BridgeError-coded failures are, everything carrying a signing error code
// is not. Context errors never are.
func Transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return signcore.CodeOf(err) == signcore.ErrCodeBridgeError
}

// Do runs fn until it succeeds, returns an error classify rejects, the
// attempts run out or ctx is done. The last error is returned wrapped.
func Do[T any](ctx context.Context, config Config, classify Classifier, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := config.Validate(); err != nil {
		return zero, err
	}
	if classify == nil {
		classify = Transient
	}

	var lastErr error
	delay := config.InitialDelay
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, signcore.NewError(signcore.ErrCodeBridgeError, "retry: context done", err)
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !classify(err) {
			return zero, err
		}

		// No sleep after the last attempt.
		if attempt == config.MaxAttempts-1 {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
			delay = time.Duration(float64(delay) * config.Multiplier)
			if config.MaxDelay > 0 && delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		case <-ctx.Done():
			timer.Stop()
			return zero, signcore.NewError(signcore.ErrCodeBridgeError, "retry: context done", ctx.Err())
		}
	}

	return zero, signcore.NewError(signcore.ErrCodeBridgeError, "retry: attempts exhausted", lastErr)
}
