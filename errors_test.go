package synkflow

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  ErrorCategory
		retryable bool
	}{
		{"config error", &ConfigError{Msg: "no script defined"}, CategoryConfiguration, false},
		{"parse error", &ParseError{Line: 2, Msg: "bad json"}, CategoryParse, false},
		{"permanent exec error", NewPermanentExecError("denied", 403, nil), CategoryExecution, false},
		{"transient exec error", NewTransientExecError("rate limited", 429, nil), CategoryExecution, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ce CategorizedError
			require.ErrorAs(t, tt.err, &ce)
			assert.Equal(t, tt.category, ce.Category())
			assert.Equal(t, tt.retryable, ce.Retryable())
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t, "no executor", (&ConfigError{Msg: "no executor"}).Error())
	assert.Equal(t, "no executor: connection refused",
		(&ConfigError{Msg: "no executor", Cause: cause}).Error())

	assert.Equal(t, "line 3: bad json", (&ParseError{Line: 3, Msg: "bad json"}).Error())
	assert.Equal(t, "bad json", (&ParseError{Msg: "bad json"}).Error())

	e := NewTransientExecError("overloaded", 529, cause)
	assert.Equal(t, "overloaded: connection refused", e.Error())
	assert.Equal(t, 529, e.StatusCode())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := fmt.Errorf("outer: %w", &ExecError{Msg: "exec", Cause: cause})

	assert.ErrorIs(t, wrapped, cause)
	var ee *ExecError
	assert.ErrorAs(t, wrapped, &ee)
}

func TestCategoryHelpers(t *testing.T) {
	assert.True(t, IsConfiguration(&ConfigError{Msg: "x"}))
	assert.True(t, IsParse(fmt.Errorf("wrapped: %w", &ParseError{Msg: "x"})))
	assert.True(t, IsExecution(NewPermanentExecError("x", 0, nil)))

	assert.False(t, IsConfiguration(errors.New("plain")))
	assert.False(t, IsParse(nil))

	assert.True(t, IsTransient(NewTransientExecError("x", 500, nil)))
	assert.False(t, IsTransient(NewPermanentExecError("x", 400, nil)))
	assert.False(t, IsTransient(errors.New("plain")))
}

func TestRetryAfterOf(t *testing.T) {
	e := NewTransientExecError("rate limited", 429, nil)
	e.RetryDelay = 3 * time.Second

	assert.Equal(t, 3*time.Second, RetryAfterOf(e))
	assert.Equal(t, 3*time.Second, RetryAfterOf(fmt.Errorf("wrapped: %w", e)))
	assert.Zero(t, RetryAfterOf(NewTransientExecError("x", 500, nil)))
	assert.Zero(t, RetryAfterOf(&ConfigError{Msg: "x"}))
	assert.Zero(t, RetryAfterOf(errors.New("plain")))
}

func TestAbort(t *testing.T) {
	cause := errors.New("context canceled")
	err := Abort(cause)

	assert.True(t, IsAborted(err))
	assert.True(t, IsExecution(err))
	assert.False(t, IsTransient(err), "aborted executions must not be retried")
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsAborted(errors.New("unrelated")))
}
