// Package artifact persists chain results to disk. A Store writes the
// aggregated JSON chain and the plain-text answer as a pair of files whose
// names derive from a human label plus a random suffix, so repeated runs
// never collide.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/MaxiDonkey/synkflow"
	"github.com/MaxiDonkey/synkflow/future"
)

// Store writes run artifacts under a base directory.
type Store struct {
	perm os.FileMode
}

// Option configures a Store.
type Option func(*Store)

// WithFileMode sets the permission bits for written files (default 0o644).
func WithFileMode(perm os.FileMode) Option {
	return func(s *Store) {
		s.perm = perm
	}
}

// New creates an artifact store.
func New(opts ...Option) *Store {
	s := &Store{perm: 0o644}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the JSON chain and the plain-text result under dir and settles
// with the path of the text artifact. The JSON fragments, which arrive as
// comma-joined object lines, are wrapped into a single array document. The
// text has its escaped line breaks restored before writing.
//
// The directory is created if missing. An empty jsonData skips the JSON file;
// an empty text rejects with a configuration error, since a run with no
// output has nothing to save.
func (s *Store) Save(ctx context.Context, dir, label, jsonData, text string) *future.Future[string] {
	return future.Go(func() (string, error) {
		if err := ctx.Err(); err != nil {
			return "", synkflow.Abort(err)
		}
		if strings.TrimSpace(text) == "" {
			return "", &synkflow.ConfigError{Msg: "artifact: nothing to save"}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("artifact: create directory: %w", err)
		}

		base := fmt.Sprintf("%s-%s", Slug(label), uuid.NewString())

		if strings.TrimSpace(jsonData) != "" {
			doc, err := wrapArray(jsonData)
			if err != nil {
				return "", err
			}
			jsonPath := filepath.Join(dir, base+".json")
			if err := os.WriteFile(jsonPath, doc, s.perm); err != nil {
				return "", fmt.Errorf("artifact: write %s: %w", jsonPath, err)
			}
		}

		textPath := filepath.Join(dir, base+".md")
		if err := os.WriteFile(textPath, []byte(Unescape(text)), s.perm); err != nil {
			return "", fmt.Errorf("artifact: write %s: %w", textPath, err)
		}
		return textPath, nil
	})
}

// wrapArray turns comma-joined JSON object lines into one indented array.
func wrapArray(jsonData string) ([]byte, error) {
	doc := "[" + strings.TrimSuffix(strings.TrimSpace(jsonData), ",") + "]"
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(doc), &items); err != nil {
		return nil, &synkflow.ParseError{Msg: "artifact: malformed JSON chain", Cause: err}
	}
	out, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, &synkflow.ParseError{Msg: "artifact: encode JSON chain", Cause: err}
	}
	return out, nil
}

// Unescape restores literal backslash-n sequences to real line breaks.
func Unescape(text string) string {
	return strings.ReplaceAll(text, `\n`, "\n")
}

// Slug lowercases a label and collapses every non-alphanumeric run to a
// single hyphen. An empty result falls back to "run".
func Slug(label string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(label) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "run"
	}
	return out
}

var _ synkflow.Saver = (*Store)(nil)
