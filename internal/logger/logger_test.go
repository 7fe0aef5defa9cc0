package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("storage", Options{Level: "debug", JSON: true, Out: &buf})

	l.Info().Str("record", "abc").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "storage", entry["component"])
	assert.Equal(t, "abc", entry["record"])
	assert.Equal(t, "info", entry["level"])
	_, hasTime := entry["time"]
	assert.True(t, hasTime, "expected 'time' field in log entry")
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New("core", Options{Level: "warn", JSON: true, Out: &buf})

	l.Debug().Msg("hidden")
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	l := New("core", Options{Level: "chatty", JSON: true, Out: &buf})

	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}

func TestNew_ConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New("cli", Options{Level: "info", Out: &buf})

	l.Info().Msg("plain text")
	assert.Contains(t, buf.String(), "plain text")
	assert.False(t, json.Valid(buf.Bytes()), "console output should not be JSON")
}

func TestNop_DiscardsOutput(t *testing.T) {
	l := Nop()
	require.NotNil(t, l)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestModule(t *testing.T) {
	var buf bytes.Buffer
	l := New("cli", Options{Level: "info", JSON: true, Out: &buf}).Module("recovery")

	l.Info().Msg("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cli", entry["component"])
	assert.Equal(t, "recovery", entry["module"])
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New("core", Options{Level: "info", JSON: true, Out: &buf})

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")
}

func TestFromContext_Empty(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
}
