package logging_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/textpipe/analyzer/internal/logging"
)

func TestErrorLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New(&buf, "error")

	log.Error("something broke")
	assert.Equal(t, "[ERROR] something broke\n", buf.String())
}

func TestStageFieldJoinsPrefix(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New(&buf, "info")

	log.WithField(logging.StageField, "rotator").Info("worker started")
	assert.Equal(t, "[INFO][rotator] - worker started\n", buf.String())
}

func TestExtraFieldsAppended(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New(&buf, "info")

	log.WithField(logging.StageField, "logger").
		WithField("position", 2).
		Info("attached to downstream")
	assert.Equal(t, "[INFO][logger] - attached to downstream position=2\n", buf.String())
}

func TestInfoSuppressedAtErrorLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New(&buf, "error")

	log.Info("quiet")
	assert.Empty(t, buf.String())
}

func TestUnknownLevelFallsBackToError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New(&buf, "chatty")

	assert.Equal(t, logrus.ErrorLevel, log.GetLevel())
}
