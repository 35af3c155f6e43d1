package econnotes

import (
	"encoding/base64"
	"strings"
)

// MediaTypeSVG is the media type of every artifact produced by PlotRenderer.
const MediaTypeSVG = "image/svg+xml"

// Point is one plotted (x, y) pair.
type Point struct {
	X, Y float64
}

// RenderedSeries records what was actually drawn for one input series.
type RenderedSeries struct {
	Name   string
	Points []Point
}

// Artifact is an encoded image produced by a renderer, together with the
// metadata needed to caption and inspect it.
type Artifact struct {
	Title     string
	MediaType string
	Data      []byte
	// Width and Height are the drawing size in inches.
	Width, Height float64
	// Series lists the plotted series in drawing order. Empty for diagrams.
	Series []RenderedSeries
	// Legend lists the legend entries in display order. Empty when the
	// figure has no legend.
	Legend []string
}

// DataURI returns the artifact encoded as a base64 data URI.
func (a *Artifact) DataURI() string {
	var sb strings.Builder
	sb.WriteString("data:")
	sb.WriteString(a.MediaType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(a.Data))
	return sb.String()
}

// ChartRenderer turns a chart description into an image.
type ChartRenderer interface {
	RenderChart(c *Chart) (*Artifact, error)
}

// DiagramRenderer turns a diagram description into an image.
type DiagramRenderer interface {
	RenderDiagram(d *Diagram) (*Artifact, error)
}

// PlotRenderer renders charts and diagrams to SVG with gonum/plot.
// It holds no state and is safe for concurrent use.
type PlotRenderer struct{}

// Compile-time interface implementation checks.
var (
	_ ChartRenderer   = PlotRenderer{}
	_ DiagramRenderer = PlotRenderer{}
)

// RenderChart renders c with the default PlotRenderer.
func RenderChart(c *Chart) (*Artifact, error) {
	return PlotRenderer{}.RenderChart(c)
}

// RenderDiagram renders d with the default PlotRenderer.
func RenderDiagram(d *Diagram) (*Artifact, error) {
	return PlotRenderer{}.RenderDiagram(d)
}
