// Package handoff implements the bounded producer-consumer queue that
// carries items between two adjacent pipeline stages.
//
// The queue is a fixed-capacity ring of strings coordinated by three
// latches: notFull (producers), notEmpty (consumers) and finished
// (shutdown). All index and count updates happen under a single mutex;
// the latches are only ever touched while that mutex is held or from
// outside any critical section, never the other way round, so the lock
// order is always queue mutex before latch mutex.
package handoff

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/textpipe/analyzer/internal/latch"
)

// ErrInvalidCapacity is returned by New for capacities below one.
var ErrInvalidCapacity = errors.New("capacity must be greater than zero")

// Queue is a bounded FIFO between one upstream producer and one downstream
// consumer. Multiple producers are tolerated; FIFO order is then the order
// of successful Put returns.
type Queue struct {
	mu       sync.Mutex
	items    []string
	head     int
	tail     int
	count    int
	capacity int

	notFull  *latch.Latch
	notEmpty *latch.Latch
	finished *latch.Latch
}

// New returns an empty queue with the given capacity.
func New(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}

	q := &Queue{
		items:    make([]string, capacity),
		capacity: capacity,
		notFull:  latch.New(),
		notEmpty: latch.New(),
		finished: latch.New(),
	}
	q.notFull.Signal()

	return q, nil
}

// Put blocks until a slot is free, then appends item at the tail.
//
// The notFull latch can be observed signaled while another producer races
// for the last slot, so the capacity check is repeated under the ring mutex
// and the wait restarted when the slot is gone.
func (q *Queue) Put(item string) {
	for {
		q.notFull.Wait()

		q.mu.Lock()
		if q.count < q.capacity {
			break
		}
		q.mu.Unlock()
	}

	q.items[q.tail] = item
	q.tail = (q.tail + 1) % q.capacity
	q.count++

	if q.count < q.capacity {
		q.notFull.Signal()
	} else {
		q.notFull.Reset()
	}
	q.notEmpty.Signal()

	q.mu.Unlock()
}

// Get blocks until an item is available or the queue is both empty and
// finished. The second return value is false only on shutdown.
func (q *Queue) Get() (string, bool) {
	for {
		q.mu.Lock()
		if q.count > 0 {
			item := q.items[q.head]
			q.items[q.head] = ""
			q.head = (q.head + 1) % q.capacity
			q.count--

			if q.count > 0 {
				q.notEmpty.Signal()
			} else {
				q.notEmpty.Reset()
			}
			q.notFull.Signal()

			q.mu.Unlock()

			return item, true
		}
		fin := q.finished.IsSet()
		q.mu.Unlock()

		if fin {
			return "", false
		}

		// Either an item arrived since the check, the queue finished, or
		// this is a spurious wakeup; the loop re-evaluates in every case.
		q.notEmpty.Wait()
	}
}

// SignalFinished marks the queue as receiving no further input and wakes
// every consumer so each re-evaluates the empty-and-finished predicate.
//
// The wake goes through the notEmpty latch flag rather than a bare
// broadcast: a bare broadcast reaches only consumers already asleep, while
// the flag also catches a consumer between its predicate check and its
// wait. Once finished is set the consumer loop terminates instead of
// re-reading the flag, so the lingering signal cannot produce a phantom
// item. Calling SignalFinished more than once is equivalent to calling it
// once.
func (q *Queue) SignalFinished() {
	q.finished.Signal()
	q.notEmpty.Signal()
}

// WaitFinished blocks until SignalFinished has been called.
func (q *Queue) WaitFinished() {
	q.finished.Wait()
}

// Len reports the current population.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.count
}

// Cap reports the fixed capacity.
func (q *Queue) Cap() int {
	return q.capacity
}
