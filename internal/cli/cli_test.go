package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textpipe/analyzer/internal/cli"
)

// syncBuffer keeps stdout readable while stage workers write to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func run(t *testing.T, args []string, input string) (int, string, string) {
	t.Helper()

	stdout := &syncBuffer{}
	stderr := &syncBuffer{}
	code := cli.Run(args, strings.NewReader(input), stdout, stderr)

	return code, stdout.String(), stderr.String()
}

func TestNoArguments(t *testing.T) {
	code, stdout, stderr := run(t, nil, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Usage: analyzer")
	assert.Contains(t, stderr, "[ERROR]")
}

func TestMissingChain(t *testing.T) {
	code, stdout, _ := run(t, []string{"10"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Usage: analyzer")
}

func TestInvalidQueueSizes(t *testing.T) {
	for _, raw := range []string{"-5", "0", "007", "3.5", "abc", "+4", ""} {
		code, stdout, stderr := run(t, []string{raw, "logger"}, "")
		assert.Equalf(t, 1, code, "queue size %q", raw)
		assert.Contains(t, stdout, "Usage: analyzer")
		assert.Contains(t, stderr, "Invalid queue size")
	}
}

func TestUnknownStage(t *testing.T) {
	code, stdout, stderr := run(t, []string{"10", "mystery"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Usage: analyzer")
	assert.Contains(t, stderr, "mystery")
}

func TestUsageListsAvailableStages(t *testing.T) {
	_, stdout, _ := run(t, nil, "")
	for _, name := range []string{"logger", "typewriter", "uppercaser", "rotator", "flipper", "expander"} {
		assert.Contains(t, stdout, name)
	}
}

func TestHappyPath(t *testing.T) {
	code, stdout, _ := run(t, []string{"10", "uppercaser", "logger"}, "hello\n<END>\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "[logger] HELLO\nPipeline shutdown complete\n", stdout)
}

func TestChainOfThree(t *testing.T) {
	code, stdout, _ := run(t,
		[]string{"10", "uppercaser", "rotator", "logger"},
		"hello\n<END>\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "[logger] OHELL\nPipeline shutdown complete\n", stdout)
}

func TestEOFWithoutEndToken(t *testing.T) {
	code, stdout, _ := run(t, []string{"10", "logger"}, "a\nb\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "[logger] a\n[logger] b\nPipeline shutdown complete\n", stdout)
}

func TestSmallQueue(t *testing.T) {
	code, stdout, _ := run(t, []string{"1", "logger"}, "a\nb\nc\n<END>\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "[logger] a\n[logger] b\n[logger] c\nPipeline shutdown complete\n", stdout)
}

func TestTypewriterDelayOverride(t *testing.T) {
	t.Setenv("ANALYZER_TYPEWRITER_DELAY", "1ms")

	code, stdout, _ := run(t, []string{"10", "typewriter"}, "hi\n<END>\n")
	assert.Equal(t, 0, code)
	// One line from the echo, one from the terminal stage.
	assert.Equal(t, "[typewriter] hi\n[typewriter] hi\nPipeline shutdown complete\n", stdout)
}

func TestDrawFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "chain.dot")
	t.Setenv("ANALYZER_DRAW_FILE", fileName)

	code, _, _ := run(t, []string{"10", "rotator", "logger"}, "hi\n<END>\n")
	require.Equal(t, 0, code)

	content, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Contains(t, string(content), "rotator_0")
}

func TestInfoLogsEnabled(t *testing.T) {
	t.Setenv("ANALYZER_LOG_LEVEL", "info")

	code, _, stderr := run(t, []string{"10", "logger"}, "<END>\n")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "[INFO][logger] - ")
}
