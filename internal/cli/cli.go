// Package cli implements the analyzer command line: argument validation,
// stage resolution, pipeline assembly and the exit-code contract.
//
// Exit codes: 0 on normal completion, 1 for argument and configuration
// errors (diagnostic on stderr, usage on stdout), 2 when a stage fails to
// initialize.
package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/textpipe/analyzer/internal/config"
	"github.com/textpipe/analyzer/internal/logging"
	"github.com/textpipe/analyzer/pkg/pipeline"
	"github.com/textpipe/analyzer/pkg/pipeline/drawer"
	"github.com/textpipe/analyzer/pkg/pipeline/measure"
	"github.com/textpipe/analyzer/pkg/stages"
)

// Run executes the analyzer with the given arguments (program name
// excluded) and streams, returning the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] unable to load configuration: %v\n", err)

		return 1
	}

	log := logging.New(stderr, cfg.LogLevel)

	if len(args) < 2 {
		log.Error("Insufficient arguments")
		printUsage(stdout)

		return 1
	}

	queueSize, err := parseQueueSize(args[0])
	if err != nil {
		log.Errorf("Invalid queue size: %s (must be a positive integer)", args[0])
		printUsage(stdout)

		return 1
	}

	msr := measure.NewDefaultMeasure()

	chain := make([]pipeline.Stage, 0, len(args)-1)
	for i, name := range args[1:] {
		s, err := stages.New(name, i, stages.Config{
			Output:          stdout,
			Logger:          log,
			Measure:         msr,
			TypewriterDelay: cfg.TypewriterDelay,
		})
		if err != nil {
			log.Errorf("Failed to load stage %s: %v", name, err)
			printUsage(stdout)

			return 1
		}
		chain = append(chain, s)
	}

	opts := []pipeline.Option{
		pipeline.WithOutput(stdout),
		pipeline.WithLogger(log),
		pipeline.WithMeasure(msr),
		pipeline.WithMaxLineBytes(cfg.MaxLineBytes),
	}
	if cfg.DrawFile != "" {
		opts = append(opts, pipeline.WithDrawer(drawer.NewDOTDrawer(cfg.DrawFile)))
	}

	p, err := pipeline.New(queueSize, chain, opts...)
	if err != nil {
		log.Errorf("Failed to assemble pipeline: %v", err)
		printUsage(stdout)

		return 1
	}

	if err := p.Init(); err != nil {
		return 2
	}

	if err := p.Run(stdin); err != nil {
		log.Errorf("Pipeline run failed: %v", err)

		return 2
	}

	return 0
}

// parseQueueSize accepts a positive decimal integer with no sign, no
// fractional part and no leading zeros, within the int range.
func parseQueueSize(raw string) (int, error) {
	if raw == "" {
		return 0, errors.New("queue size is empty")
	}

	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, errors.Errorf("queue size %s is not a positive integer", raw)
		}
	}

	if len(raw) > 1 && raw[0] == '0' {
		return 0, errors.Errorf("queue size %s has leading zeros", raw)
	}

	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "queue size %s", raw)
	}
	if size <= 0 {
		return 0, errors.Errorf("queue size %d must be positive", size)
	}

	return size, nil
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: analyzer <queue_size> <stage1> <stage2> ... <stageN>")
	fmt.Fprintln(out, "Arguments:")
	fmt.Fprintln(out, "  queue_size  Maximum number of items in each stage's queue")
	fmt.Fprintln(out, "  stage1..N   Names of stages to run, in pipeline order")
	fmt.Fprintln(out, "Available stages:")
	for _, info := range stages.Available() {
		fmt.Fprintf(out, "  %-11s - %s\n", info.Name, info.Description)
	}
	fmt.Fprintln(out, "Example:")
	fmt.Fprintln(out, "  analyzer 20 uppercaser rotator logger")
	fmt.Fprintln(out, "  echo 'hello' | analyzer 20 uppercaser rotator logger")
	fmt.Fprintln(out, "  echo '<END>' | analyzer 20 uppercaser rotator logger")
}
