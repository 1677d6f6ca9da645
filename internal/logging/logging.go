// Package logging builds the logrus logger the analyzer writes diagnostics
// with. Every line lands on one stream (stderr in production) with the
// [ERROR]/[INFO] prefix the stage runtime and driver agreed on.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// StageField is the entry field carrying the stage display name.
const StageField = "stage"

// New returns a logger writing prefixed lines to out. Unknown level names
// fall back to error, which keeps informational chatter off by default.
func New(out io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&PrefixFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.ErrorLevel
	}
	log.SetLevel(lvl)

	return log
}

// PrefixFormatter renders entries as single diagnostic lines:
//
//	[ERROR][rotator] - unable to hand item downstream
//	[INFO] pipeline initialized stage_count=3
//
// The stage field, when present, joins the prefix; any remaining fields are
// appended as sorted key=value pairs.
type PrefixFormatter struct{}

// Format implements logrus.Formatter.
func (f *PrefixFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer

	level := strings.ToUpper(entry.Level.String())

	if stage, ok := entry.Data[StageField].(string); ok {
		fmt.Fprintf(&buf, "[%s][%s] - %s", level, stage, entry.Message)
	} else {
		fmt.Fprintf(&buf, "[%s] %s", level, entry.Message)
	}

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key == StageField {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(&buf, " %s=%v", key, entry.Data[key])
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
