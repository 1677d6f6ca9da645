package stages

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// typewriter echoes each item to its writer one character at a time,
// pausing between characters, and forwards the item with the typewriter
// tag. Each instance owns its writer and delay.
type typewriter struct {
	out   io.Writer
	delay time.Duration
}

func newTypewriter(out io.Writer, delay time.Duration) *typewriter {
	if out == nil {
		out = os.Stdout
	}
	if delay <= 0 {
		delay = DefaultTypewriterDelay
	}

	return &typewriter{
		out:   out,
		delay: delay,
	}
}

func (tw *typewriter) transform(input string) (string, error) {
	if _, err := fmt.Fprint(tw.out, "[typewriter] "); err != nil {
		return "", errors.Wrap(err, "unable to write typewriter prefix")
	}

	for i := 0; i < len(input); i++ {
		if _, err := tw.out.Write([]byte{input[i]}); err != nil {
			return "", errors.Wrap(err, "unable to write typewriter character")
		}
		time.Sleep(tw.delay)
	}

	if _, err := fmt.Fprintln(tw.out); err != nil {
		return "", errors.Wrap(err, "unable to finish typewriter line")
	}

	return "[typewriter] " + input, nil
}
