package model

import (
	"fmt"

	"github.com/google/uuid"
)

// EndToken is the in-band sentinel. A stage that dequeues it forwards it
// downstream and terminates; the driver stops reading input after
// submitting it. Matching is byte-exact after newline stripping.
const EndToken = "<END>"

// PlaceWorkFunc is the downstream hook installed by Attach. It mirrors the
// stage's PlaceWork: a nil error means the item was accepted.
type PlaceWorkFunc func(item string) error

// TransformFunc turns one input string into one freshly-owned output
// string. A non-nil error drops the item without stopping the stage.
type TransformFunc func(input string) (string, error)

// StageInfo carries the identity of one stage instance. Two instances of
// the same stage implementation in one chain share Name but nothing else.
type StageInfo struct {
	ID        uuid.UUID
	Name      string
	Position  int
	QueueSize int
}

// NewStageInfo returns metadata for the stage at the given chain position.
func NewStageInfo(name string, position int) *StageInfo {
	return &StageInfo{
		ID:       uuid.New(),
		Name:     name,
		Position: position,
	}
}

// Label returns the instance-unique display key used for graph vertices and
// metric names, e.g. "rotator_2".
func (si *StageInfo) Label() string {
	return fmt.Sprintf("%s_%d", si.Name, si.Position)
}
