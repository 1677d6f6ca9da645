package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textpipe/analyzer/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 1048576, cfg.MaxLineBytes)
	assert.Equal(t, 100*time.Millisecond, cfg.TypewriterDelay)
	assert.Empty(t, cfg.DrawFile)
}

func TestOverrides(t *testing.T) {
	t.Setenv("ANALYZER_LOG_LEVEL", "info")
	t.Setenv("ANALYZER_MAX_LINE_BYTES", "2048")
	t.Setenv("ANALYZER_TYPEWRITER_DELAY", "5ms")
	t.Setenv("ANALYZER_DRAW_FILE", "chain.dot")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2048, cfg.MaxLineBytes)
	assert.Equal(t, 5*time.Millisecond, cfg.TypewriterDelay)
	assert.Equal(t, "chain.dot", cfg.DrawFile)
}

func TestInvalidDuration(t *testing.T) {
	t.Setenv("ANALYZER_TYPEWRITER_DELAY", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}
