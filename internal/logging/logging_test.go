package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesFileAndConsole(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, closer, err := New(Options{
		Dir:        dir,
		Filename:   "backup.log",
		Level:      "INFO",
		ConsoleOut: &console,
	})
	require.NoError(t, err)

	logger.Info().Msg("archive created")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "backup.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "- INFO - archive created")
	assert.Contains(t, console.String(), "archive created")
}

func TestNew_AppendsAcrossRuns(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	for _, msg := range []string{"first run", "second run"} {
		var console bytes.Buffer
		logger, closer, err := New(Options{
			Dir:        dir,
			Filename:   "backup.log",
			ConsoleOut: &console,
		})
		require.NoError(t, err)
		logger.Info().Msg(msg)
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, "backup.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")
}

func TestNew_RespectsLevel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, closer, err := New(Options{
		Dir:        dir,
		Filename:   "backup.log",
		Level:      "error",
		ConsoleOut: &console,
	})
	require.NoError(t, err)

	logger.Info().Msg("not recorded")
	logger.Error().Msg("recorded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "backup.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "not recorded")
	assert.Contains(t, string(data), "- ERROR - recorded")
}

func TestNewConsole_JSON(t *testing.T) {
	var console bytes.Buffer
	logger := NewConsole(Options{JSONConsole: true, ConsoleOut: &console})

	logger.Info().Str("distribution", "ubuntu").Msg("detected")

	assert.Contains(t, console.String(), `"distribution":"ubuntu"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}
