package base

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvVar(t *testing.T) {
	t.Setenv("PARALOG_TEST_VALUE", "set")
	assert.Equal(t, "set", EnvVar("PARALOG_TEST_VALUE", "default"))
	assert.Equal(t, "default", EnvVar("PARALOG_TEST_MISSING", "default"))

	t.Setenv("PARALOG_TEST_EMPTY", "")
	assert.Equal(t, "", EnvVar("PARALOG_TEST_EMPTY", "default"), "an empty value still counts as set")
}

func TestEnvVarFirst(t *testing.T) {
	t.Setenv("PARALOG_TEST_OLD", "old")
	assert.Equal(t, "old", EnvVarFirst("default", "PARALOG_TEST_NEW", "PARALOG_TEST_OLD"))

	t.Setenv("PARALOG_TEST_NEW", "new")
	assert.Equal(t, "new", EnvVarFirst("default", "PARALOG_TEST_NEW", "PARALOG_TEST_OLD"))

	assert.Equal(t, "default", EnvVarFirst("default", "PARALOG_TEST_NONE"))
}

func TestEnvVarAsInt(t *testing.T) {
	t.Setenv("PARALOG_TEST_INT", "42")
	assert.Equal(t, 42, EnvVarAsInt("PARALOG_TEST_INT", 1))

	t.Setenv("PARALOG_TEST_INT", "forty-two")
	assert.Equal(t, 1, EnvVarAsInt("PARALOG_TEST_INT", 1))
}

func TestEnvVarAsBool(t *testing.T) {
	t.Setenv("PARALOG_TEST_BOOL", "true")
	assert.True(t, EnvVarAsBool("PARALOG_TEST_BOOL", false))

	t.Setenv("PARALOG_TEST_BOOL", "maybe")
	assert.False(t, EnvVarAsBool("PARALOG_TEST_BOOL", false))
}

func TestEnvVarAsDuration(t *testing.T) {
	t.Setenv("PARALOG_TEST_DURATION", "1m30s")
	assert.Equal(t, 90*time.Second, EnvVarAsDuration("PARALOG_TEST_DURATION", time.Second))

	t.Setenv("PARALOG_TEST_DURATION", "15")
	assert.Equal(t, 15*time.Second, EnvVarAsDuration("PARALOG_TEST_DURATION", time.Second))

	t.Setenv("PARALOG_TEST_DURATION", "soon")
	assert.Equal(t, time.Second, EnvVarAsDuration("PARALOG_TEST_DURATION", time.Second))
}

func TestEnvVarAsStringSlice(t *testing.T) {
	t.Setenv("PARALOG_TEST_SLICE", " a, b ,,c ")
	assert.Equal(t, []string{"a", "b", "c"}, EnvVarAsStringSlice("PARALOG_TEST_SLICE"))
	assert.Empty(t, EnvVarAsStringSlice("PARALOG_TEST_SLICE_MISSING"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("CRITICAL"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
