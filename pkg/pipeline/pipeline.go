package pipeline

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/textpipe/analyzer/pkg/pipeline/measure"
	"github.com/textpipe/analyzer/pkg/pipeline/model"
)

const shutdownMessage = "Pipeline shutdown complete"

const defaultMaxLineBytes = 1 << 20

// Stage is the contract every stage implementation offers the driver. It
// matches the loader-facing surface: a nil error is success, anything else
// is a diagnostic.
type Stage interface {
	Init(queueSize int) error
	Fini() error
	PlaceWork(item string) error
	Attach(next model.PlaceWorkFunc)
	WaitFinished() error
	Name() string
	Info() *model.StageInfo
}

// Pipeline owns an ordered chain of stages and the input/output endpoints.
type Pipeline struct {
	stages    []Stage
	queueSize int

	out          io.Writer
	log          *logrus.Logger
	drawer       Drawer
	measure      measure.Measure
	maxLineBytes int

	initialized bool
}

// New validates the chain and applies options. Nothing is spawned yet;
// Init starts the stage workers.
func New(queueSize int, stages []Stage, opts ...Option) (*Pipeline, error) {
	if queueSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidQueueSize, "queue size %d", queueSize)
	}
	if len(stages) == 0 {
		return nil, ErrEmptyChain
	}

	p := &Pipeline{
		stages:       stages,
		queueSize:    queueSize,
		out:          os.Stdout,
		log:          logrus.StandardLogger(),
		maxLineBytes: defaultMaxLineBytes,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.drawer != nil {
		if err := p.recordTopology(); err != nil {
			return nil, errors.Wrap(err, "unable to record pipeline topology")
		}
	}

	return p, nil
}

// Init initializes every stage from first to last. When one fails, the
// stages already running are finalized and the failure is returned; the
// caller maps it to the init-error exit class.
func (p *Pipeline) Init() error {
	for i, s := range p.stages {
		if err := s.Init(p.queueSize); err != nil {
			p.log.Errorf("Failed to initialize stage %s: %v", s.Name(), err)
			for j := 0; j < i; j++ {
				if ferr := p.stages[j].Fini(); ferr != nil {
					p.log.Errorf("Failed to finalize stage %s: %v", p.stages[j].Name(), ferr)
				}
			}

			return errors.Wrapf(err, "unable to initialize stage %s", s.Name())
		}
	}

	p.initialized = true
	p.log.WithField("stage_count", len(p.stages)).Info("pipeline initialized")

	return nil
}

// Run executes the assembled pipeline against input: attach the chain,
// feed lines until the end token, wait for every stage in order, finalize
// every stage in order, then write the shutdown line. After startup no
// item-level error aborts the run; Run delivers what can be delivered and
// terminates cleanly.
func (p *Pipeline) Run(input io.Reader) error {
	if !p.initialized {
		return ErrNotInitialized
	}

	p.attach()
	p.feed(input)

	for _, s := range p.stages {
		if err := s.WaitFinished(); err != nil {
			p.log.Errorf("Failed waiting for stage %s to finish: %v", s.Name(), err)
		}
	}

	for _, s := range p.stages {
		if err := s.Fini(); err != nil {
			p.log.Errorf("Failed to finalize stage %s: %v", s.Name(), err)
		}
	}

	p.report()

	fmt.Fprintln(p.out, shutdownMessage)

	return nil
}

// attach wires each stage's downstream hook to the next stage's PlaceWork
// and marks the last stage terminal. Attaching happens only after every
// stage is initialized, so no stage ever observes an unattached downstream
// transition mid-stream.
func (p *Pipeline) attach() {
	for i := 0; i < len(p.stages)-1; i++ {
		p.stages[i].Attach(p.stages[i+1].PlaceWork)
	}
	p.stages[len(p.stages)-1].Attach(nil)
}

// feed reads input line by line, strips the trailing newline and submits
// each line to the first stage. Reading stops once an end token has been
// submitted; when the stream ends without one, feed synthesizes it so the
// chain still terminates.
func (p *Pipeline) feed(input io.Reader) {
	first := p.stages[0]

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 4096), p.maxLineBytes)
	// Split on '\n' only, so every other byte of a line (a trailing '\r'
	// included) reaches the first stage unchanged.
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF && len(data) > 0 {
			return len(data), data, nil
		}

		return 0, nil, nil
	})

	endSent := false
	for scanner.Scan() {
		line := scanner.Text()

		if err := first.PlaceWork(line); err != nil {
			p.log.Errorf("Failed to place work: %v", err)
		}

		if line == model.EndToken {
			endSent = true

			break
		}
	}

	if err := scanner.Err(); err != nil {
		p.log.Errorf("Failed to read input: %v", err)
	}

	if !endSent {
		if err := first.PlaceWork(model.EndToken); err != nil {
			p.log.Errorf("Failed to send end token: %v", err)
		}
	}
}

// report surfaces the per-stage item totals and renders the drawing. Both
// are best-effort; the run already completed.
func (p *Pipeline) report() {
	if p.measure != nil {
		for name, mt := range p.measure.AllMetrics() {
			p.log.WithField("stage", name).
				WithField("in", mt.ItemsIn()).
				WithField("out", mt.ItemsOut()).
				WithField("transform_errors", mt.TransformErrors()).
				WithField("downstream_errors", mt.DownstreamErrors()).
				Info("stage totals")
		}
	}

	if p.drawer != nil {
		if p.measure != nil {
			if err := p.drawer.AddMeasure(p.measure); err != nil {
				p.log.Errorf("Failed to add measure to drawing: %v", err)
			}
		}
		if err := p.drawer.Draw(); err != nil {
			p.log.Errorf("Failed to draw pipeline: %v", err)
		}
	}
}

// recordTopology registers the stdin -> stages -> stdout chain with the
// drawer.
func (p *Pipeline) recordTopology() error {
	total := len(p.stages) + 2

	if err := p.drawer.AddStep("stdin", 0, total); err != nil {
		return err
	}

	previous := "stdin"
	for _, s := range p.stages {
		label := s.Info().Label()
		if err := p.drawer.AddStep(label, s.Info().Position+1, total); err != nil {
			return err
		}
		if err := p.drawer.AddLink(previous, label); err != nil {
			return err
		}
		previous = label
	}

	if err := p.drawer.AddStep("stdout", total-1, total); err != nil {
		return err
	}

	return p.drawer.AddLink(previous, "stdout")
}
