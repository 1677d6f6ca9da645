package pipeline_test

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/textpipe/analyzer/internal/logging"
	"github.com/textpipe/analyzer/pkg/pipeline"
	"github.com/textpipe/analyzer/pkg/pipeline/measure"
	"github.com/textpipe/analyzer/pkg/pipeline/model"
	"github.com/textpipe/analyzer/pkg/stages"
)

// syncBuffer guards a bytes.Buffer against concurrent stage writers.
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

func newChain(t *testing.T, out io.Writer, names ...string) []pipeline.Stage {
	t.Helper()

	log := logging.New(io.Discard, "error")

	chain := make([]pipeline.Stage, 0, len(names))
	for i, name := range names {
		s, err := stages.New(name, i, stages.Config{
			Output: out,
			Logger: log,
		})
		require.NoError(t, err)
		chain = append(chain, s)
	}

	return chain
}

func newMeasuredChain(t *testing.T, out io.Writer, msr measure.Measure, names ...string) []pipeline.Stage {
	t.Helper()

	log := logging.New(io.Discard, "error")

	chain := make([]pipeline.Stage, 0, len(names))
	for i, name := range names {
		s, err := stages.New(name, i, stages.Config{
			Output:  out,
			Logger:  log,
			Measure: msr,
		})
		require.NoError(t, err)
		chain = append(chain, s)
	}

	return chain
}

// stubStage records the lifecycle calls the driver makes.
type stubStage struct {
	info       *model.StageInfo
	initErr    error
	initCalled bool
	finiCalled bool
}

func (s *stubStage) Init(queueSize int) error {
	s.initCalled = true

	return s.initErr
}

func (s *stubStage) Fini() error {
	s.finiCalled = true

	return nil
}

func (s *stubStage) PlaceWork(item string) error { return nil }

func (s *stubStage) Attach(next model.PlaceWorkFunc) {}

func (s *stubStage) WaitFinished() error { return nil }

func (s *stubStage) Name() string { return s.info.Name }

func (s *stubStage) Info() *model.StageInfo { return s.info }

var _ pipeline.Stage = (*stubStage)(nil)

// runLines assembles the named chain, runs it over input and returns the
// stdout lines.
func runLines(t *testing.T, queueSize int, names []string, input string) []string {
	t.Helper()

	out := &syncBuffer{}
	chain := newChain(t, out, names...)

	p, err := pipeline.New(queueSize, chain,
		pipeline.WithOutput(out),
		pipeline.WithLogger(logging.New(io.Discard, "error")),
	)
	require.NoError(t, err)

	require.NoError(t, p.Init())
	require.NoError(t, p.Run(strings.NewReader(input)))

	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}
