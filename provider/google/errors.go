package google

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/MaxiDonkey/synkflow"
)

// wrapError categorizes a Google GenAI error for retry decisions. Context
// expiry maps to the distinguished aborted error.
func wrapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return synkflow.Abort(err)
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return synkflow.NewPermanentExecError("google request failed", 0, err)
	}

	code := apiErr.Code
	if code == 429 || (code >= 500 && code < 600) {
		return synkflow.NewTransientExecError("google request failed", code, err)
	}
	return synkflow.NewPermanentExecError("google request failed", code, err)
}
