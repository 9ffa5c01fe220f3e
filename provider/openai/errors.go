package openai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/openai/openai-go"

	"github.com/MaxiDonkey/synkflow"
)

// wrapError categorizes an OpenAI SDK error for retry decisions. Context
// expiry maps to the distinguished aborted error.
func wrapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return synkflow.Abort(err)
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return synkflow.NewPermanentExecError("openai request failed", 0, err)
	}

	code := apiErr.StatusCode
	if code == 429 || (code >= 500 && code < 600) {
		e := synkflow.NewTransientExecError("openai request failed", code, err)
		e.RetryDelay = parseRetryAfter(apiErr.Response)
		return e
	}
	return synkflow.NewPermanentExecError("openai request failed", code, err)
}

// parseRetryAfter extracts the Retry-After header as a duration, accepting
// both delay-seconds and HTTP-date forms.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}
	return 0
}
