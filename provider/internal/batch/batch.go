// Package batch implements the fan-out helper shared by the provider
// adapters: every prompt of a batch executes concurrently, and the batch
// settles as one future once all prompts complete or the first one fails.
package batch

import (
	"strings"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/future"
)

// Run launches one future per prompt and joins the outputs, in prompt order,
// with a blank line. Partial completion is not observable: the returned
// future settles only when the whole batch has. An empty batch rejects with
// a configuration error.
func Run(prompts []string, launch func(prompt string) *future.Future[string]) *future.Future[string] {
	if len(prompts) == 0 {
		return future.Rejected[string](&synkflow.ConfigError{Msg: "empty prompt batch"})
	}

	futures := make([]*future.Future[string], len(prompts))
	for i, prompt := range prompts {
		futures[i] = launch(prompt)
	}

	return future.Map(future.All(futures), func(outputs []string) (string, error) {
		return strings.Join(outputs, "\n\n"), nil
	})
}
