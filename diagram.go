package econnotes

import (
	"fmt"
	"image/color"
	"math"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default diagram size in inches.
const (
	DefaultDiagramWidth  = 6.0
	DefaultDiagramHeight = 4.5
)

const (
	nodeFontSize  = 10 // points
	edgeFontSize  = 7.5
	nodePadX      = 8 // points around the node label
	nodePadY      = 6
	edgeSpread    = 7 // points between opposing parallel edges
	edgeLabelGap  = 9 // points from the edge line to its label
	arrowLength   = 7
	arrowHalfBase = 3.5
	ellipseSides  = 48
	diagramMargin = 0.45 // fraction of the coordinate span added on each side
)

var (
	defaultNodeFill = colornames.Lightsteelblue
	defaultNodeText = color.Color(colornames.Black)
	edgeColor       = color.Color(colornames.Dimgray)
)

// RenderDiagram draws d as an SVG with every node at its given
// coordinate. Invalid input yields a *ValidationError.
func (PlotRenderer) RenderDiagram(d *Diagram) (art *Artifact, err error) {
	if d == nil {
		return nil, invalid(string(KindDiagram), "", "diagram is nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			art = nil
			err = &RenderError{Kind: KindDiagram, Title: d.Title, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	p := plot.New()
	p.Title.Text = d.Title
	p.HideAxes()
	p.Add(newFlowGraph(d))

	width, height := figureSize(d.Width, d.Height, DefaultDiagramWidth, DefaultDiagramHeight)
	data, err := drawSVG(p, width, height)
	if err != nil {
		return nil, &RenderError{Kind: KindDiagram, Title: d.Title, Err: err}
	}
	return &Artifact{
		Title:     d.Title,
		MediaType: MediaTypeSVG,
		Data:      data,
		Width:     width,
		Height:    height,
	}, nil
}

// flowGraph is a plot.Plotter drawing fixed-position nodes and arrows.
type flowGraph struct {
	d     *Diagram
	index map[string]int
	pairs map[[2]string]bool
}

var (
	_ plot.Plotter    = (*flowGraph)(nil)
	_ plot.DataRanger = (*flowGraph)(nil)
)

func newFlowGraph(d *Diagram) *flowGraph {
	g := &flowGraph{
		d:     d,
		index: make(map[string]int, len(d.Nodes)),
		pairs: make(map[[2]string]bool, len(d.Edges)),
	}
	for i, n := range d.Nodes {
		g.index[n.Name] = i
	}
	for _, e := range d.Edges {
		g.pairs[[2]string{e.From, e.To}] = true
	}
	return g
}

// DataRange pads the node bounding box so labels and arrows stay inside.
func (g *flowGraph) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, n := range g.d.Nodes {
		xmin, xmax = math.Min(xmin, n.X), math.Max(xmax, n.X)
		ymin, ymax = math.Min(ymin, n.Y), math.Max(ymax, n.Y)
	}
	padX := math.Max(xmax-xmin, 1) * diagramMargin
	padY := math.Max(ymax-ymin, 1) * diagramMargin
	return xmin - padX, xmax + padX, ymin - padY, ymax + padY
}

// nodeBox is a node resolved to canvas space.
type nodeBox struct {
	center  vg.Point
	hw, hh  vg.Length
	ellipse bool
}

// reach returns the distance from the center to the border along unit
// direction (ux, uy).
func (b nodeBox) reach(ux, uy float64) float64 {
	hw, hh := float64(b.hw), float64(b.hh)
	if b.ellipse {
		return 1 / math.Sqrt((ux*ux)/(hw*hw)+(uy*uy)/(hh*hh))
	}
	tx, ty := math.Inf(1), math.Inf(1)
	if ux != 0 {
		tx = hw / math.Abs(ux)
	}
	if uy != 0 {
		ty = hh / math.Abs(uy)
	}
	return math.Min(tx, ty)
}

func (b nodeBox) outline() []vg.Point {
	c := b.center
	if !b.ellipse {
		return []vg.Point{
			{X: c.X - b.hw, Y: c.Y - b.hh},
			{X: c.X + b.hw, Y: c.Y - b.hh},
			{X: c.X + b.hw, Y: c.Y + b.hh},
			{X: c.X - b.hw, Y: c.Y + b.hh},
		}
	}
	pts := make([]vg.Point, ellipseSides)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / ellipseSides
		pts[i] = vg.Point{
			X: c.X + vg.Length(math.Cos(a))*b.hw,
			Y: c.Y + vg.Length(math.Sin(a))*b.hh,
		}
	}
	return pts
}

// Plot implements plot.Plotter.
func (g *flowGraph) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	nodeText := text.Style{
		Color:   defaultNodeText,
		Font:    font.From(plot.DefaultFont, nodeFontSize),
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
	}
	edgeText := nodeText
	edgeText.Font = font.From(plot.DefaultFont, edgeFontSize)
	edgeText.Color = edgeColor

	boxes := make([]nodeBox, len(g.d.Nodes))
	for i, n := range g.d.Nodes {
		boxes[i] = nodeBox{
			center:  vg.Point{X: trX(n.X), Y: trY(n.Y)},
			hw:      nodeText.Width(n.Name)/2 + vg.Points(nodePadX),
			hh:      nodeText.Height(n.Name)/2 + vg.Points(nodePadY),
			ellipse: n.Shape == ShapeEllipse,
		}
		if boxes[i].ellipse {
			// An ellipse needs more room than a box to enclose its label.
			boxes[i].hw *= math.Sqrt2
			boxes[i].hh *= math.Sqrt2
		}
	}

	for _, e := range g.d.Edges {
		g.drawEdge(&c, e, boxes[g.index[e.From]], boxes[g.index[e.To]], edgeText)
	}

	for i, n := range g.d.Nodes {
		b := boxes[i]
		outline := b.outline()
		c.FillPolygon(mustColor(n.FillColor, defaultNodeFill), outline)
		c.StrokeLines(draw.LineStyle{Color: edgeColor, Width: vg.Points(0.5)}, append(outline, outline[0]))

		sty := nodeText
		sty.Color = mustColor(n.TextColor, defaultNodeText)
		c.FillText(sty, b.center, n.Name)
	}
}

// drawEdge draws an arrow between the borders of from and to. When the
// reverse edge exists both are shifted to their own right-hand side.
func (g *flowGraph) drawEdge(c *draw.Canvas, e Edge, from, to nodeBox, label text.Style) {
	dx := float64(to.center.X - from.center.X)
	dy := float64(to.center.Y - from.center.Y)
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	ux, uy := dx/dist, dy/dist
	// Right-hand normal of the direction of travel.
	nx, ny := uy, -ux

	shift := 0.0
	if g.pairs[[2]string{e.To, e.From}] {
		shift = edgeSpread
	}
	at := func(p vg.Point, along, across float64) vg.Point {
		return vg.Point{
			X: p.X + vg.Length(ux*along+nx*across),
			Y: p.Y + vg.Length(uy*along+ny*across),
		}
	}

	start := at(from.center, from.reach(ux, uy), shift)
	tip := at(to.center, -to.reach(ux, uy)-1, shift)
	base := at(tip, -arrowLength, 0)

	sty := draw.LineStyle{Color: edgeColor, Width: vg.Points(1)}
	if e.Style == LineDashed {
		sty.Dashes = dashPatterns[LineDashed]
	}
	c.StrokeLines(sty, []vg.Point{start, base})
	c.FillPolygon(edgeColor, []vg.Point{tip, at(base, 0, arrowHalfBase), at(base, 0, -arrowHalfBase)})

	if e.Label == "" {
		return
	}
	mid := vg.Point{X: (start.X + tip.X) / 2, Y: (start.Y + tip.Y) / 2}
	c.FillText(label, at(mid, 0, edgeLabelGap), e.Label)
}
