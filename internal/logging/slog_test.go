package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextFiltersByLevel(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		level string
		want  []string
		skip  []string
	}{
		{"debug", []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR"}, nil},
		{"info", []string{"level=INFO", "level=ERROR"}, []string{"level=DEBUG"}},
		{"error", []string{"level=ERROR"}, []string{"level=INFO", "level=WARN"}},
	}
	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tc.level, "text")
			l.Debug(ctx, "transform: kept raw value", "field", "rating")
			l.Info(ctx, "entries: loaded", "count", 3)
			l.Warn(ctx, "entries: debounced save failed", "id", 1)
			l.Error(ctx, "entries: load failed", "error", "boom")

			out := buf.String()
			for _, s := range tc.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tc.skip {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestNew_JSONWithAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "JSON").With("collection", "entries")
	l.Info(context.Background(), "store: migrated", "version", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "store: migrated", rec["msg"])
	assert.Equal(t, "entries", rec["collection"])
	assert.EqualValues(t, 2, rec["version"])
}

func TestWith_DoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "info", "text")
	_ = parent.With("op", "putMany")
	parent.Info(context.Background(), "plain")

	assert.False(t, strings.Contains(buf.String(), "op=putMany"))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	} {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().With("k", "v").Error(context.TODO(), "dropped")
	})
}
