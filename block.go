package econnotes

import (
	"fmt"
	"math"
	"strings"
)

// BlockKind identifies the variant of a content block.
type BlockKind string

// Block kinds.
const (
	KindHeading  BlockKind = "heading"
	KindRichText BlockKind = "richtext"
	KindTable    BlockKind = "table"
	KindChart    BlockKind = "chart"
	KindDiagram  BlockKind = "diagram"
	KindImage    BlockKind = "image"
	KindColumns  BlockKind = "columns"
)

// Block is one unit of page content. The set of implementations is closed:
// Heading, RichText, Table, Chart, Diagram, Image and Columns.
type Block interface {
	Kind() BlockKind
	// Validate reports structural problems as a *ValidationError.
	Validate() error
	block()
}

// Compile-time interface implementation checks.
var (
	_ Block = (*Heading)(nil)
	_ Block = (*RichText)(nil)
	_ Block = (*Table)(nil)
	_ Block = (*Chart)(nil)
	_ Block = (*Diagram)(nil)
	_ Block = (*Image)(nil)
	_ Block = (*Columns)(nil)
)

// blockName labels a block in error messages.
func blockName(kind BlockKind, title string) string {
	if title == "" {
		return string(kind)
	}
	return fmt.Sprintf("%s %q", kind, title)
}

// ---------------------------------------------------------------------------
// Heading
// ---------------------------------------------------------------------------

// Heading is a section title. ID is the anchor; empty means derived from Text.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// NewHeading creates a validated Heading.
func NewHeading(level int, text string) (*Heading, error) {
	h := &Heading{Level: level, Text: text}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Heading) Kind() BlockKind { return KindHeading }
func (h *Heading) block()          {}

// Validate checks level bounds and non-empty text.
func (h *Heading) Validate() error {
	name := blockName(KindHeading, h.Text)
	if h.Level < 1 || h.Level > 6 {
		return invalid(name, "level", "must be between 1 and 6, got %d", h.Level)
	}
	if strings.TrimSpace(h.Text) == "" {
		return invalid(name, "text", "cannot be empty")
	}
	return nil
}

// ---------------------------------------------------------------------------
// RichText
// ---------------------------------------------------------------------------

// Rich text formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// RichText is already-formatted content. HTML is trusted and emitted as-is;
// markdown is converted to HTML during assembly.
type RichText struct {
	Format string
	Source string
}

// NewRichText creates a validated RichText.
func NewRichText(format, source string) (*RichText, error) {
	r := &RichText{Format: format, Source: source}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// HTML is shorthand for an HTML RichText block.
func HTML(source string) *RichText {
	return &RichText{Format: FormatHTML, Source: source}
}

// Markdown is shorthand for a markdown RichText block.
func Markdown(source string) *RichText {
	return &RichText{Format: FormatMarkdown, Source: source}
}

func (r *RichText) Kind() BlockKind { return KindRichText }
func (r *RichText) block()          {}

// Validate checks the format. Empty sources are allowed.
func (r *RichText) Validate() error {
	switch r.Format {
	case FormatHTML, FormatMarkdown:
		return nil
	default:
		return invalid(string(KindRichText), "format", "unknown format %q (must be html or markdown)", r.Format)
	}
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

// Table is tabular data. Cells hold the literal text to display; they are
// never reformatted.
type Table struct {
	Caption string
	Columns []string
	Rows    [][]string
	Index   []string // Optional row labels, one per row
	Class   string   // Optional CSS class
}

// NewTable creates a validated Table.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	t := &Table{Columns: columns, Rows: rows}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) Kind() BlockKind { return KindTable }
func (t *Table) block()          {}

// Validate checks that every row is aligned to the columns.
func (t *Table) Validate() error {
	name := blockName(KindTable, t.Caption)
	if len(t.Columns) == 0 {
		return invalid(name, "columns", "at least one column is required")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return invalid(name, fmt.Sprintf("rows[%d]", i), "has %d cells, want %d", len(row), len(t.Columns))
		}
	}
	if t.Index != nil && len(t.Index) != len(t.Rows) {
		return invalid(name, "index", "has %d labels for %d rows", len(t.Index), len(t.Rows))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Chart
// ---------------------------------------------------------------------------

// ChartKind selects the drawing style of a chart.
type ChartKind string

// Chart kinds.
const (
	ChartLine    ChartKind = "line"
	ChartBar     ChartKind = "bar"
	ChartHBar    ChartKind = "hbar"
	ChartScatter ChartKind = "scatter"
)

// Marker shapes for series points.
const (
	MarkerNone     = "none"
	MarkerCircle   = "circle"
	MarkerCross    = "cross"
	MarkerSquare   = "square"
	MarkerTriangle = "triangle"
	MarkerRing     = "ring"
	MarkerPlus     = "plus"
)

// Line styles for series.
const (
	LineNone   = "none"
	LineSolid  = "solid"
	LineDashed = "dashed"
	LineDotted = "dotted"
)

// SeriesStyle overrides the default look of a series. Zero fields fall
// back to the per-index defaults.
type SeriesStyle struct {
	Marker string
	Line   string
	Color  string // Color name (e.g. "teal") or hex "#rrggbb"
	Width  float64
}

// Series is one named sequence of points. For bar charts Y holds one value
// per category and X may be left empty.
type Series struct {
	Name  string
	X     []float64
	Y     []float64
	Style *SeriesStyle
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Y) }

// points pairs X and Y. A bar series without X uses the category index.
func (s Series) points() []Point {
	pts := make([]Point, len(s.Y))
	for i, y := range s.Y {
		x := float64(i)
		if i < len(s.X) {
			x = s.X[i]
		}
		pts[i] = Point{X: x, Y: y}
	}
	return pts
}

// Limits pins axis ranges. Nil fields are computed from the data.
type Limits struct {
	XMin, XMax *float64
	YMin, YMax *float64
}

// Chart describes one plotted figure.
type Chart struct {
	Type       ChartKind
	Title      string
	XLabel     string
	YLabel     string
	Series     []Series
	Categories []string // Bar labels, in display order
	Legend     bool
	Grid       bool
	Limits     *Limits
	// ValueFormat is a fmt verb string for bar annotations, e.g. "$%.0f".
	// Numbers are printed with thousands grouping.
	ValueFormat string
	Width       float64 // inches, 0 = default
	Height      float64 // inches, 0 = default
}

// NewChart creates a validated Chart of the given kind.
func NewChart(kind ChartKind, title string, series ...Series) (*Chart, error) {
	c := &Chart{Type: kind, Title: title, Series: series}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chart) Kind() BlockKind { return KindChart }
func (c *Chart) block()          {}

// IsBar reports whether the chart draws bars.
func (c *Chart) IsBar() bool {
	return c.Type == ChartBar || c.Type == ChartHBar
}

// Validate checks series alignment and style values.
func (c *Chart) Validate() error {
	name := blockName(KindChart, c.Title)
	switch c.Type {
	case ChartLine, ChartBar, ChartHBar, ChartScatter:
	default:
		return invalid(name, "kind", "unknown chart kind %q", c.Type)
	}
	if len(c.Series) == 0 {
		return invalid(name, "series", "at least one series is required")
	}
	for i, s := range c.Series {
		field := fmt.Sprintf("series[%d]", i)
		if len(s.Y) == 0 {
			return invalid(name, field, "series %q is empty", s.Name)
		}
		switch {
		case c.IsBar() && len(s.X) == 0:
		case len(s.X) != len(s.Y):
			return invalid(name, field, "x has %d values, y has %d", len(s.X), len(s.Y))
		}
		for j := range s.Y {
			if !isFinite(s.Y[j]) || (j < len(s.X) && !isFinite(s.X[j])) {
				return invalid(name, field, "point %d is not finite", j)
			}
		}
		if c.IsBar() && len(s.Y) != len(c.Categories) {
			return invalid(name, field, "has %d values for %d categories", len(s.Y), len(c.Categories))
		}
		if err := s.Style.validate(); err != nil {
			return invalid(name, field+".style", "%v", err)
		}
		if _, err := resolveLook(c.Type, i, s.Style); err != nil {
			return invalid(name, field+".style", "%v", err)
		}
	}
	if c.IsBar() && len(c.Categories) == 0 {
		return invalid(name, "categories", "bar charts require categories")
	}
	if c.Width < 0 || c.Height < 0 {
		return invalid(name, "size", "width and height must be positive")
	}
	if l := c.Limits; l != nil {
		if l.XMin != nil && l.XMax != nil && *l.XMin >= *l.XMax {
			return invalid(name, "limits", "x min %g must be below max %g", *l.XMin, *l.XMax)
		}
		if l.YMin != nil && l.YMax != nil && *l.YMin >= *l.YMax {
			return invalid(name, "limits", "y min %g must be below max %g", *l.YMin, *l.YMax)
		}
	}
	return nil
}

func (s *SeriesStyle) validate() error {
	if s == nil {
		return nil
	}
	switch s.Marker {
	case "", MarkerNone, MarkerCircle, MarkerCross, MarkerSquare, MarkerTriangle, MarkerRing, MarkerPlus:
	default:
		return fmt.Errorf("unknown marker %q", s.Marker)
	}
	switch s.Line {
	case "", LineNone, LineSolid, LineDashed, LineDotted:
	default:
		return fmt.Errorf("unknown line style %q", s.Line)
	}
	if s.Width < 0 {
		return fmt.Errorf("width must be positive")
	}
	if s.Color != "" {
		if _, err := parseColor(s.Color); err != nil {
			return err
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ---------------------------------------------------------------------------
// Diagram
// ---------------------------------------------------------------------------

// Node shapes.
const (
	ShapeBox     = "box"
	ShapeEllipse = "ellipse"
)

// Node is a diagram vertex placed at a fixed position.
type Node struct {
	Name      string
	X, Y      float64
	Shape     string // "box" (default) or "ellipse"
	FillColor string
	TextColor string
}

// Edge is a directed, labeled connection between two nodes.
type Edge struct {
	From  string
	To    string
	Label string
	Style string // "solid" (default) or "dashed"
}

// Diagram is a small fixed-layout directed graph.
type Diagram struct {
	Title  string
	Nodes  []Node
	Edges  []Edge
	Width  float64 // inches, 0 = default
	Height float64 // inches, 0 = default
}

// NewDiagram creates a validated Diagram.
func NewDiagram(title string, nodes []Node, edges []Edge) (*Diagram, error) {
	d := &Diagram{Title: title, Nodes: nodes, Edges: edges}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Diagram) Kind() BlockKind { return KindDiagram }
func (d *Diagram) block()          {}

// Validate checks node uniqueness and that edges reference known nodes.
func (d *Diagram) Validate() error {
	name := blockName(KindDiagram, d.Title)
	if len(d.Nodes) == 0 {
		return invalid(name, "nodes", "at least one node is required")
	}
	seen := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if n.Name == "" {
			return invalid(name, field, "name cannot be empty")
		}
		if seen[n.Name] {
			return invalid(name, field, "duplicate node %q", n.Name)
		}
		seen[n.Name] = true
		if !isFinite(n.X) || !isFinite(n.Y) {
			return invalid(name, field, "position is not finite")
		}
		switch n.Shape {
		case "", ShapeBox, ShapeEllipse:
		default:
			return invalid(name, field, "unknown shape %q", n.Shape)
		}
		for _, c := range []string{n.FillColor, n.TextColor} {
			if c == "" {
				continue
			}
			if _, err := parseColor(c); err != nil {
				return invalid(name, field, "%v", err)
			}
		}
	}
	for i, e := range d.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if !seen[e.From] {
			return invalid(name, field, "unknown source node %q", e.From)
		}
		if !seen[e.To] {
			return invalid(name, field, "unknown destination node %q", e.To)
		}
		if e.From == e.To {
			return invalid(name, field, "self loop on %q", e.From)
		}
		switch e.Style {
		case "", LineSolid, LineDashed:
		default:
			return invalid(name, field, "unknown edge style %q", e.Style)
		}
	}
	if d.Width < 0 || d.Height < 0 {
		return invalid(name, "size", "width and height must be positive")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Image
// ---------------------------------------------------------------------------

// Image references an external picture. The reference is handed to the
// browser untouched; it is never fetched here.
type Image struct {
	Src     string
	Caption string
}

// NewImage creates a validated Image.
func NewImage(src, caption string) (*Image, error) {
	img := &Image{Src: src, Caption: caption}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func (i *Image) Kind() BlockKind { return KindImage }
func (i *Image) block()          {}

// Validate checks for a non-empty reference.
func (i *Image) Validate() error {
	if strings.TrimSpace(i.Src) == "" {
		return invalid(blockName(KindImage, i.Caption), "src", "reference cannot be empty")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Columns
// ---------------------------------------------------------------------------

// Columns lays nested blocks side by side. Widths are relative weights;
// nil means equal widths.
type Columns struct {
	Widths []float64
	Cells  [][]Block
}

// NewColumns creates a validated Columns block.
func NewColumns(widths []float64, cells ...[]Block) (*Columns, error) {
	c := &Columns{Widths: widths, Cells: cells}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Columns) Kind() BlockKind { return KindColumns }
func (c *Columns) block()          {}

// Validate checks widths and every nested block.
func (c *Columns) Validate() error {
	name := string(KindColumns)
	if len(c.Cells) == 0 {
		return invalid(name, "cells", "at least one column is required")
	}
	if c.Widths != nil && len(c.Widths) != len(c.Cells) {
		return invalid(name, "widths", "has %d weights for %d columns", len(c.Widths), len(c.Cells))
	}
	for i, w := range c.Widths {
		if !(w > 0) || !isFinite(w) {
			return invalid(name, fmt.Sprintf("widths[%d]", i), "must be positive, got %g", w)
		}
	}
	for i, cell := range c.Cells {
		for j, b := range cell {
			if b == nil {
				return invalid(name, fmt.Sprintf("cells[%d][%d]", i, j), "block is nil")
			}
			if _, nested := b.(*Columns); nested {
				return invalid(name, fmt.Sprintf("cells[%d][%d]", i, j), "columns cannot be nested")
			}
			if err := b.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
