package stage

import (
	"fmt"

	"github.com/textpipe/analyzer/internal/handoff"
	"github.com/textpipe/analyzer/pkg/pipeline/model"
)

// run is the worker loop. It is the sole consumer of the stage's queue:
// it dequeues until end-of-stream, forwards the end token downstream before
// exiting, and sets the stage's finished flag as its last action.
//
// Item-level failures never stop the loop. A failing transform drops the
// item; a refused downstream handoff drops the transformed item.
func (s *Stage) run(queue *handoff.Queue) {
	s.log.Info("worker started")

	for {
		item, ok := queue.Get()
		if !ok {
			break
		}

		if item == model.EndToken {
			s.log.Info("received end token, shutting down")
			if next := s.next(); next != nil {
				if err := next(model.EndToken); err != nil {
					s.log.Errorf("unable to forward end token: %v", err)
				}
			}

			break
		}

		if s.metric != nil {
			s.metric.IncIn()
		}

		out, err := s.transform(item)
		if err != nil {
			s.log.Errorf("transform failed: %v", err)
			if s.metric != nil {
				s.metric.IncTransformError()
			}

			continue
		}

		next := s.next()
		if next != nil {
			if err := next(out); err != nil {
				s.log.Errorf("unable to hand item downstream: %v", err)
				if s.metric != nil {
					s.metric.IncDownstreamError()
				}

				continue
			}
		} else if _, err := fmt.Fprintln(s.out, out); err != nil {
			s.log.Errorf("unable to write output: %v", err)

			continue
		}

		if s.metric != nil {
			s.metric.IncOut()
		}
	}

	s.setFinished()
	s.log.Info("worker exiting")
}
