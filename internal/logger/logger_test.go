package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONToConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := newLogger(Config{Level: "info", ServiceName: "stockanalyzer"}, &buf)
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("symbol", "RELIANCE").Msg("resolved")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "RELIANCE", entry["symbol"])
	assert.Equal(t, "stockanalyzer", entry["service"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := newLogger(Config{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestNew_ErrorFileOnlyGetsErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, err := newLogger(Config{Level: "debug", FileEnabled: true, FilePath: dir}, &bytes.Buffer{})
	require.NoError(t, err)

	l.Info().Msg("routine")
	l.Error().Msg("broken")

	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "routine")
	assert.Contains(t, string(app), "broken")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errs), "routine")
	assert.Contains(t, string(errs), "broken")
}
