// Package stages provides the built-in stage implementations and the
// registry the front end resolves stage names through.
//
// Every call to New produces a fresh instance with its own private state;
// the same stage name used twice in one chain yields two fully independent
// stages.
package stages

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/textpipe/analyzer/pkg/pipeline/measure"
	"github.com/textpipe/analyzer/pkg/pipeline/model"
	"github.com/textpipe/analyzer/pkg/pipeline/stage"
)

// ErrUnknownStage is returned by New for names missing from the registry.
var ErrUnknownStage = errors.New("unknown stage")

// DefaultTypewriterDelay is the per-character pause of the typewriter
// stage when none is configured.
const DefaultTypewriterDelay = 100 * time.Millisecond

// Config carries the shared collaborators a stage instance is built with.
type Config struct {
	// Output is where a terminal stage emits items and where the
	// typewriter echoes. Defaults to os.Stdout inside the stage.
	Output io.Writer
	// Logger receives the stage's diagnostics.
	Logger *logrus.Logger
	// Measure, when set, receives a metric per created instance.
	Measure measure.Measure
	// TypewriterDelay overrides the typewriter's per-character pause.
	TypewriterDelay time.Duration
}

// Info describes one registered stage for the usage listing.
type Info struct {
	Name        string
	Description string
}

// Available lists the registered stages in their usage order.
func Available() []Info {
	return []Info{
		{Name: "logger", Description: "Logs all strings that pass through"},
		{Name: "typewriter", Description: "Simulates typewriter effect with delays"},
		{Name: "uppercaser", Description: "Converts strings to uppercase"},
		{Name: "rotator", Description: "Move every character to the right. Last character moves to the beginning."},
		{Name: "flipper", Description: "Reverses the order of characters"},
		{Name: "expander", Description: "Expands each character with spaces"},
	}
}

// New builds a fresh instance of the named stage for the given chain
// position.
func New(name string, position int, cfg Config) (*stage.Stage, error) {
	var transform model.TransformFunc

	switch name {
	case "uppercaser":
		transform = Uppercase
	case "rotator":
		transform = Rotate
	case "flipper":
		transform = Flip
	case "expander":
		transform = Expand
	case "logger":
		transform = LogLine
	case "typewriter":
		tw := newTypewriter(cfg.Output, cfg.TypewriterDelay)
		transform = tw.transform
	default:
		return nil, errors.Wrapf(ErrUnknownStage, "%s", name)
	}

	opts := make([]stage.Option, 0, 3)
	if cfg.Output != nil {
		opts = append(opts, stage.WithOutput(cfg.Output))
	}
	if cfg.Logger != nil {
		opts = append(opts, stage.WithLogger(cfg.Logger))
	}
	if cfg.Measure != nil {
		opts = append(opts, stage.WithMetric(cfg.Measure.AddMetric(fmt.Sprintf("%s_%d", name, position))))
	}

	return stage.New(name, position, transform, opts...)
}
