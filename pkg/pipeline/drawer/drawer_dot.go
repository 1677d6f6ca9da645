// Package drawer renders the assembled chain as a DOT digraph. Vertices
// are colored along a cold-to-warm gradient from input to output; once the
// run finishes, edges carry the number of items each handoff transported.
package drawer

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/textpipe/analyzer/pkg/pipeline/measure"
)

const maxRGB = 240

// DOTDrawer is a drawer that writes the chain graph as a DOT file.
type DOTDrawer struct {
	fileName string
	graph    graph.Graph[string, string]
	order    []string
}

// NewDOTDrawer creates a drawer targeting fileName.
func NewDOTDrawer(fileName string) *DOTDrawer {
	return &DOTDrawer{
		fileName: fileName,
		graph:    graph.New(graph.StringHash, graph.Directed()),
	}
}

// AddStep adds a vertex for one chain position. The fill color runs from
// blue at the input end to red at the output end.
func (d *DOTDrawer) AddStep(name string, position, total int) error {
	hex, err := gradient(position, total)
	if err != nil {
		return err
	}

	err = d.graph.AddVertex(name,
		graph.VertexAttribute("style", "filled"),
		graph.VertexAttribute("fillcolor", hex),
		graph.VertexAttribute("fontcolor", "white"),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	d.order = append(d.order, name)

	return nil
}

// AddLink adds an edge between two adjacent steps.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// AddMeasure labels every stage's incoming edge with the items it dequeued
// and its outgoing edge with the items it delivered.
func (d *DOTDrawer) AddMeasure(m measure.Measure) error {
	metrics := m.AllMetrics()

	for i := 1; i < len(d.order)-1; i++ {
		mt, ok := metrics[d.order[i]]
		if !ok {
			continue
		}

		err := d.graph.UpdateEdge(d.order[i-1], d.order[i],
			graph.EdgeAttribute("label", fmt.Sprintf("%d items", mt.ItemsIn())),
			graph.EdgeAttribute("fontcolor", "blue"),
		)
		if err != nil {
			return errors.Wrapf(err, "unable to update edge into %s", d.order[i])
		}

		err = d.graph.UpdateEdge(d.order[i], d.order[i+1],
			graph.EdgeAttribute("label", fmt.Sprintf("%d items", mt.ItemsOut())),
			graph.EdgeAttribute("fontcolor", "blue"),
		)
		if err != nil {
			return errors.Wrapf(err, "unable to update edge out of %s", d.order[i])
		}
	}

	return nil
}

// Draw writes the DOT file.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to render dot file %s", d.fileName)
	}

	return nil
}

// gradient maps a chain position to a blue-to-red hex color.
func gradient(position, total int) (string, error) {
	fraction := 0.0
	if total > 1 {
		fraction = float64(position) / float64(total-1)
	}

	red := uint8(maxRGB * fraction)
	blue := uint8(maxRGB * (1 - fraction))

	rgb, err := colors.RGB(red, 0, blue) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return rgb.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], wrt io.Writer) error {
	desc, err := generateDOT(g)
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T]) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   map[string]string{"rankdir": "LR"},
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for vertex, adjacencies := range adjacencyMap {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceProperties.Attributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		for adjacency, edge := range adjacencies {
			stmt := statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
