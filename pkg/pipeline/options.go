package pipeline

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/textpipe/analyzer/pkg/pipeline/drawer"
	"github.com/textpipe/analyzer/pkg/pipeline/measure"
)

// Drawer receives the chain topology at construction and renders it at
// shutdown.
type Drawer = drawer.Drawer

// Option customises a pipeline at construction.
type Option func(p *Pipeline)

// WithOutput overrides the writer the shutdown line is written to. The
// terminal stage's writer is configured on the stage itself.
func WithOutput(out io.Writer) Option {
	return func(p *Pipeline) {
		p.out = out
	}
}

// WithLogger sets the logger for driver diagnostics.
func WithLogger(log *logrus.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithDrawer records the chain topology and renders it when the run ends.
func WithDrawer(d Drawer) Option {
	return func(p *Pipeline) {
		p.drawer = d
	}
}

// WithMeasure attaches the measure whose per-stage totals are reported at
// shutdown and, when a drawer is set, drawn onto the chain's edges.
func WithMeasure(m measure.Measure) Option {
	return func(p *Pipeline) {
		p.measure = m
	}
}

// WithMaxLineBytes raises or lowers the input line cap.
func WithMaxLineBytes(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxLineBytes = n
		}
	}
}
