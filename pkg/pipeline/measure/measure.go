// Package measure provides per-stage item accounting. The worker updates
// its stage's metric as items flow; the driver reports the totals at
// shutdown and the drawer labels the chain's edges with them.
package measure

import "sync"

// DefaultMeasure is the in-memory Measure implementation.
type DefaultMeasure struct {
	mu    sync.Mutex
	steps map[string]Metric
}

// NewDefaultMeasure returns an empty measure.
func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		steps: make(map[string]Metric),
	}
}

// AddMetric registers and returns the metric for one stage instance.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &DefaultMetric{}
	m.steps[name] = mt

	return mt
}

// AllMetrics returns every registered metric keyed by stage label.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Metric, len(m.steps))
	for name, mt := range m.steps {
		out[name] = mt
	}

	return out
}

var _ Measure = (*DefaultMeasure)(nil)

// DefaultMetric is the mutex-guarded Metric implementation.
type DefaultMetric struct {
	mu               sync.Mutex
	in               int64
	out              int64
	transformErrors  int64
	downstreamErrors int64
}

// IncIn records one item dequeued for processing.
func (mt *DefaultMetric) IncIn() {
	mt.mu.Lock()
	mt.in++
	mt.mu.Unlock()
}

// IncOut records one item forwarded downstream or written to output.
func (mt *DefaultMetric) IncOut() {
	mt.mu.Lock()
	mt.out++
	mt.mu.Unlock()
}

// IncTransformError records one item dropped by a failing transform.
func (mt *DefaultMetric) IncTransformError() {
	mt.mu.Lock()
	mt.transformErrors++
	mt.mu.Unlock()
}

// IncDownstreamError records one item the next stage refused.
func (mt *DefaultMetric) IncDownstreamError() {
	mt.mu.Lock()
	mt.downstreamErrors++
	mt.mu.Unlock()
}

// ItemsIn returns the number of items dequeued.
func (mt *DefaultMetric) ItemsIn() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.in
}

// ItemsOut returns the number of items delivered.
func (mt *DefaultMetric) ItemsOut() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.out
}

// TransformErrors returns the number of per-item transform failures.
func (mt *DefaultMetric) TransformErrors() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.transformErrors
}

// DownstreamErrors returns the number of refused handoffs.
func (mt *DefaultMetric) DownstreamErrors() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.downstreamErrors
}

var _ Metric = (*DefaultMetric)(nil)
