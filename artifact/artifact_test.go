package artifact

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaxiDonkey/synkflow"
)

func save(t *testing.T, s *Store, dir, label, jsonData, text string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Save(ctx, dir, label, jsonData, text).Await(ctx)
}

func TestSave(t *testing.T) {
	t.Run("writes json and markdown pair", func(t *testing.T) {
		dir := t.TempDir()
		path, err := save(t, New(), dir, "My Answer",
			`{"step":1},`+"\n"+`{"step":2}`,
			`First line\nSecond line`)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(filepath.Base(path), "my-answer-"))
		assert.True(t, strings.HasSuffix(path, ".md"))

		md, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "First line\nSecond line", string(md))

		jsonPath := strings.TrimSuffix(path, ".md") + ".json"
		data, err := os.ReadFile(jsonPath)
		require.NoError(t, err)
		var items []map[string]int
		require.NoError(t, json.Unmarshal(data, &items))
		assert.Equal(t, []map[string]int{{"step": 1}, {"step": 2}}, items)
	})

	t.Run("repeated saves never collide", func(t *testing.T) {
		dir := t.TempDir()
		first, err := save(t, New(), dir, "same", "", "text")
		require.NoError(t, err)
		second, err := save(t, New(), dir, "same", "", "text")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("empty json skips the json artifact", func(t *testing.T) {
		dir := t.TempDir()
		path, err := save(t, New(), dir, "plain", "", "just text")
		require.NoError(t, err)

		_, err = os.Stat(strings.TrimSuffix(path, ".md") + ".json")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty text rejects", func(t *testing.T) {
		_, err := save(t, New(), t.TempDir(), "x", `{"a":1}`, "  ")
		assert.True(t, synkflow.IsConfiguration(err))
	})

	t.Run("malformed json chain rejects", func(t *testing.T) {
		_, err := save(t, New(), t.TempDir(), "x", "not json at all", "text")
		assert.True(t, synkflow.IsParse(err))
	})

	t.Run("creates missing directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "deeper")
		path, err := save(t, New(), dir, "x", "", "text")
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
	})

	t.Run("cancelled context rejects with abort", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		wait, waitCancel := context.WithTimeout(context.Background(), time.Second)
		defer waitCancel()
		_, err := New().Save(ctx, t.TempDir(), "x", "", "text").Await(wait)
		assert.True(t, synkflow.IsAborted(err))
	})
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My Answer", "my-answer"},
		{"hello", "hello"},
		{"a  b--c", "a-b-c"},
		{"  trimmed  ", "trimmed"},
		{"Modèle Génératif", "modèle-génératif"},
		{"!!!", "run"},
		{"", "run"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "a\nb", Unescape(`a\nb`))
	assert.Equal(t, "plain", Unescape("plain"))
}
