// Package stage implements one pipeline stage: a bounded handoff queue, a
// dedicated worker draining it, and the lifecycle the driver steers it
// through (init, attach, place work, wait finished, fini).
package stage

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/textpipe/analyzer/internal/handoff"
	"github.com/textpipe/analyzer/internal/logging"
	"github.com/textpipe/analyzer/pkg/pipeline/measure"
	"github.com/textpipe/analyzer/pkg/pipeline/model"
)

var (
	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("stage already initialized")
	// ErrNotInitialized is returned by operations that require Init first.
	ErrNotInitialized = errors.New("stage not initialized")
	// ErrFinalized is returned by PlaceWork after Fini.
	ErrFinalized = errors.New("stage already finalized")
	// ErrFinished is returned by PlaceWork once the worker has terminated.
	ErrFinished = errors.New("stage already finished processing")
	// ErrTransformMustBeSet is returned by New for a nil transform.
	ErrTransformMustBeSet = errors.New("transform must be set")
)

// Stage is a single stage instance. Each instance owns its queue and its
// worker; two instances never share state, whatever their names.
type Stage struct {
	info      *model.StageInfo
	transform model.TransformFunc
	out       io.Writer
	log       *logrus.Entry
	metric    measure.Metric

	mu          sync.Mutex
	queue       *handoff.Queue
	downstream  model.PlaceWorkFunc
	initialized bool
	finalized   bool
	finished    bool

	workers errgroup.Group
}

// Option customises a stage at construction.
type Option func(s *Stage)

// WithOutput sets the writer the terminal stage emits items to.
func WithOutput(out io.Writer) Option {
	return func(s *Stage) {
		s.out = out
	}
}

// WithLogger sets the logger diagnostics are written with.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Stage) {
		s.log = log.WithField(logging.StageField, s.info.Name)
	}
}

// WithMetric attaches item accounting.
func WithMetric(mt measure.Metric) Option {
	return func(s *Stage) {
		s.metric = mt
	}
}

// New constructs an uninitialized stage for the given chain position.
func New(name string, position int, transform model.TransformFunc, opts ...Option) (*Stage, error) {
	if transform == nil {
		return nil, errors.Wrapf(ErrTransformMustBeSet, "stage %s", name)
	}

	s := &Stage{
		info:      model.NewStageInfo(name, position),
		transform: transform,
		out:       os.Stdout,
	}
	s.log = logrus.StandardLogger().WithField(logging.StageField, name)

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Init constructs the queue and spawns the worker. It fails on a
// non-positive queue size and on repeated initialization.
func (s *Stage) Init(queueSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return errors.Wrapf(ErrAlreadyInitialized, "stage %s", s.info.Name)
	}

	queue, err := handoff.New(queueSize)
	if err != nil {
		return errors.Wrapf(err, "unable to create queue for stage %s", s.info.Name)
	}

	s.queue = queue
	s.info.QueueSize = queueSize
	s.initialized = true

	s.workers.Go(func() error {
		s.run(queue)

		return nil
	})

	s.log.WithField("stage_id", s.info.ID).Info("stage initialized")

	return nil
}

// PlaceWork enqueues a copy of item, blocking while the queue is full.
// Submitting the end token additionally signals the queue finished, so the
// worker drains the remaining items and then observes end-of-stream.
func (s *Stage) PlaceWork(item string) error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()

		return errors.Wrapf(ErrNotInitialized, "stage %s", s.info.Name)
	}
	if s.finalized {
		s.mu.Unlock()

		return errors.Wrapf(ErrFinalized, "stage %s", s.info.Name)
	}
	if s.finished {
		s.mu.Unlock()

		return errors.Wrapf(ErrFinished, "stage %s", s.info.Name)
	}
	queue := s.queue
	s.mu.Unlock()

	// Blocking happens outside the stage mutex; only the queue's own
	// mutex is ever held across a condition wait.
	queue.Put(item)

	if item == model.EndToken {
		queue.SignalFinished()
	}

	return nil
}

// Attach installs the downstream hook, or nil for the terminal stage. The
// driver calls it exactly once, after every stage is initialized and before
// any input flows.
func (s *Stage) Attach(next model.PlaceWorkFunc) {
	s.mu.Lock()
	s.downstream = next
	s.mu.Unlock()

	if next != nil {
		s.log.Info("attached to downstream stage")
	} else {
		s.log.Info("running as terminal stage")
	}
}

// WaitFinished blocks until the queue has been signaled finished and the
// worker has terminated. The join is deterministic; there is no polling.
func (s *Stage) WaitFinished() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()

		return errors.Wrapf(ErrNotInitialized, "stage %s", s.info.Name)
	}
	if s.finalized {
		// Fini already joined the worker; there is nothing left to wait
		// for.
		s.mu.Unlock()

		return nil
	}
	queue := s.queue
	s.mu.Unlock()

	queue.WaitFinished()

	if err := s.workers.Wait(); err != nil {
		return errors.Wrapf(err, "stage %s", s.info.Name)
	}

	return nil
}

// Fini signals the queue finished (idempotently), joins the worker and
// releases the queue. Calling Fini twice is harmless.
func (s *Stage) Fini() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()

		return errors.Wrapf(ErrNotInitialized, "stage %s", s.info.Name)
	}
	if s.finalized {
		s.mu.Unlock()

		return nil
	}
	queue := s.queue
	s.mu.Unlock()

	queue.SignalFinished()

	err := s.workers.Wait()

	s.mu.Lock()
	s.finalized = true
	s.queue = nil
	s.mu.Unlock()

	s.log.Info("stage finalized")

	if err != nil {
		return errors.Wrapf(err, "stage %s", s.info.Name)
	}

	return nil
}

// Name returns the stage's display name.
func (s *Stage) Name() string {
	return s.info.Name
}

// Info returns the stage's instance metadata.
func (s *Stage) Info() *model.StageInfo {
	return s.info
}

func (s *Stage) next() model.PlaceWorkFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.downstream
}

func (s *Stage) setFinished() {
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
}
