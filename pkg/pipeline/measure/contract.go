package measure

// Measure collects one Metric per stage instance, keyed by the instance
// label.
type Measure interface {
	AddMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accounts for the items a single stage handled. Items carrying the
// end token are not counted; they are protocol, not work.
type Metric interface {
	IncIn()
	IncOut()
	IncTransformError()
	IncDownstreamError()

	ItemsIn() int64
	ItemsOut() int64
	TransformErrors() int64
	DownstreamErrors() int64
}
