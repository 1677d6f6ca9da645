package drawer

import "github.com/textpipe/analyzer/pkg/pipeline/measure"

// Drawer is an interface that defines the methods for drawing a pipeline
// chain.
type Drawer interface {
	// AddStep adds a vertex for the step at the given chain position;
	// total is the full chain length including the stdin and stdout
	// endpoints.
	AddStep(name string, position, total int) error
	// AddLink adds an edge between two adjacent steps.
	AddLink(parentName, childName string) error
	// AddMeasure labels the chain's edges with item totals.
	AddMeasure(m measure.Measure) error
	// Draw writes the chain graph to its destination.
	Draw() error
}
