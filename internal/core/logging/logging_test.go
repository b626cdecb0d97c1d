package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetupJSON(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer

	require.NoError(t, Setup("warn", FormatJSON, &buf))

	log.Info().Msg("dropped")
	log.Warn().Str("template_id", "german_print").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "german_print", entry["template_id"])
	assert.Contains(t, entry, "time")
}

func TestSetupConsole(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer

	require.NoError(t, Setup("debug", FormatConsole, &buf))
	log.Debug().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestSetupErrors(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer

	assert.Error(t, Setup("loud", FormatJSON, &buf))
	assert.Error(t, Setup("info", "xml", &buf))
}

func TestSetupEmptyLevelDefaultsToInfo(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer

	require.NoError(t, Setup("", "", &buf))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestWith(t *testing.T) {
	resetGlobals(t)
	var buf bytes.Buffer
	require.NoError(t, Setup("info", FormatJSON, &buf))

	logger := With(map[string]any{"project_id": "acme"})
	logger.Info().Msg("scoped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "acme", entry["project_id"])
}
