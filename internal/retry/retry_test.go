package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaxiDonkey/synkflow"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo(t *testing.T) {
	t.Run("returns first success", func(t *testing.T) {
		calls := 0
		got, err := Do(context.Background(), fastConfig(3), isTransient, func() (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors until success", func(t *testing.T) {
		calls := 0
		got, err := Do(context.Background(), fastConfig(5), isTransient, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, errTransient
			}
			return calls, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors fail immediately", func(t *testing.T) {
		boom := errors.New("permanent")
		calls := 0
		_, err := Do(context.Background(), fastConfig(5), isTransient, func() (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhaustion returns the last error", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastConfig(3), isTransient, func() (int, error) {
			calls++
			return 0, errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls)
	})

	t.Run("context cancellation interrupts backoff", func(t *testing.T) {
		cfg := Config{
			MaxAttempts:  3,
			InitialDelay: time.Minute,
			MaxDelay:     time.Minute,
			Multiplier:   1.0,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := Do(ctx, cfg, isTransient, func() (int, error) {
			return 0, errTransient
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("disabled config makes a single attempt", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), Disabled(), isTransient, func() (int, error) {
			calls++
			return 0, errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, calls)
	})
}

func TestEffectiveDelay(t *testing.T) {
	serverBacked := &synkflow.ExecError{Msg: "rate limited", Code: 429, Transient: true, RetryDelay: 80 * time.Millisecond}

	t.Run("server delay wins when larger", func(t *testing.T) {
		assert.Equal(t, 80*time.Millisecond, effectiveDelay(time.Millisecond, serverBacked))
	})

	t.Run("configured delay wins when larger", func(t *testing.T) {
		assert.Equal(t, time.Second, effectiveDelay(time.Second, serverBacked))
	})

	t.Run("plain errors keep the configured delay", func(t *testing.T) {
		assert.Equal(t, time.Second, effectiveDelay(time.Second, errTransient))
	})
}

func TestDoHonorsRetryAfter(t *testing.T) {
	serverBacked := &synkflow.ExecError{Msg: "rate limited", Code: 429, Transient: true, RetryDelay: 60 * time.Millisecond}

	calls := 0
	start := time.Now()
	got, err := Do(context.Background(), fastConfig(3), synkflow.IsTransient, func() (string, error) {
		calls++
		if calls == 1 {
			return "", serverBacked
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond,
		"backoff must wait at least the server-suggested delay")
}

func TestDelay(t *testing.T) {
	t.Run("grows exponentially up to the cap", func(t *testing.T) {
		cfg := Config{
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
		assert.Equal(t, 1*time.Second, cfg.Delay(0))
		assert.Equal(t, 2*time.Second, cfg.Delay(1))
		assert.Equal(t, 4*time.Second, cfg.Delay(2))
		assert.Equal(t, 8*time.Second, cfg.Delay(3))
		assert.Equal(t, 10*time.Second, cfg.Delay(4))
		assert.Equal(t, 10*time.Second, cfg.Delay(10))
	})

	t.Run("negative attempt clamps to zero", func(t *testing.T) {
		cfg := Config{InitialDelay: time.Second, MaxDelay: time.Minute, Multiplier: 2.0}
		assert.Equal(t, time.Second, cfg.Delay(-3))
	})

	t.Run("jitter stays within bounds", func(t *testing.T) {
		cfg := Config{
			InitialDelay: time.Second,
			MaxDelay:     time.Minute,
			Multiplier:   2.0,
			Jitter:       0.1,
		}
		for i := 0; i < 50; i++ {
			d := cfg.Delay(0)
			assert.GreaterOrEqual(t, d, 900*time.Millisecond)
			assert.LessOrEqual(t, d, 1100*time.Millisecond)
		}
	})
}
