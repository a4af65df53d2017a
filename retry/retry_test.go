package retry

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hawala-wallet/signcore"
)

var fast = Config{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2.0,
}

func always(error) bool { return true }

func TestDo(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		result, err := Do(context.Background(), fast, always, func(context.Context) (string, error) {
			calls++
			return "success", nil
		})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if result != "success" {
			t.Errorf("expected 'success', got %s", result)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("retries on retryable error", func(t *testing.T) {
		calls := 0
		result, err := Do(context.Background(), fast, always, func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("temporary error")
			}
			return 42, nil
		})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if result != 42 {
			t.Errorf("expected 42, got %d", result)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("attempts exhausted wraps last error", func(t *testing.T) {
		calls := 0
		cause := errors.New("persistent error")
		_, err := Do(context.Background(), fast, always, func(context.Context) (string, error) {
			calls++
			return "", cause
		})
		if !errors.Is(err, cause) {
			t.Errorf("expected wrapped cause, got %v", err)
		}
		if signcore.CodeOf(err) != signcore.ErrCodeBridgeError {
			t.Errorf("CodeOf() = %q", signcore.CodeOf(err))
		}
		if calls != fast.MaxAttempts {
			t.Errorf("expected %d calls, got %d", fast.MaxAttempts, calls)
		}
	})

	t.Run("does not retry signing failures", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fast, nil, func(context.Context) (string, error) {
			calls++
			return "", signcore.Errorf(signcore.ErrSignatureMismatch, "bad signature")
		})
		if !errors.Is(err, signcore.ErrSignatureMismatch) {
			t.Errorf("expected SignatureMismatch, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call (no retries), got %d", calls)
		}
	})

	t.Run("context cancelled before attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		_, err := Do(ctx, fast, always, func(context.Context) (string, error) {
			calls++
			return "", nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls != 0 {
			t.Errorf("expected 0 calls, got %d", calls)
		}
	})

	t.Run("context deadline during delay", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		config := Config{MaxAttempts: 10, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}
		calls := 0
		_, err := Do(ctx, config, always, func(context.Context) (string, error) {
			calls++
			return "", errors.New("error")
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call before the deadline, got %d", calls)
		}
	})

	t.Run("exponential backoff increases delay", func(t *testing.T) {
		config := Config{MaxAttempts: 3, InitialDelay: 10 * time.Millisecond, MaxDelay: 100 * time.Millisecond, Multiplier: 2}
		start := time.Now()
		_, _ = Do(context.Background(), config, always, func(context.Context) (string, error) {
			return "", errors.New("error")
		})
		// 10ms + 20ms
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("expected at least 30ms of backoff, got %v", elapsed)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		for _, c := range []Config{{MaxAttempts: 0, Multiplier: 2}, {MaxAttempts: -1, Multiplier: 2}, {MaxAttempts: 2, Multiplier: 0.5}} {
			calls := 0
			_, err := Do(context.Background(), c, always, func(context.Context) (string, error) {
				calls++
				return "", nil
			})
			if !errors.Is(err, signcore.ErrInvalidInput) {
				t.Errorf("%+v: expected InvalidInput, got %v", c, err)
			}
			if calls != 0 {
				t.Errorf("%+v: expected 0 calls, got %d", c, calls)
			}
		}
	})
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"bridge error", signcore.NewError(signcore.ErrCodeBridgeError, "server returned 503", nil), true},
		{"invalid input", signcore.Errorf(signcore.ErrInvalidInput, "bad hex"), false},
		{"verification failed", signcore.Errorf(signcore.ErrVerificationFailed, "bad sig"), false},
		{"cancelled", context.Canceled, false},
		{"deadline", signcore.NewError(signcore.ErrCodeBridgeError, "timeout", context.DeadlineExceeded), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transient(tt.err); got != tt.want {
				t.Errorf("Transient() = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkDo(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Do(context.Background(), DefaultConfig, always, func(context.Context) (string, error) {
			return "success", nil
		})
	}
}
