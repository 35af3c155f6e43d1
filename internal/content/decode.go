package content

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alnah/go-econnotes"
	"github.com/alnah/go-econnotes/internal/yamlutil"
)

// Page is a decoded content file, ready for the page builder.
type Page struct {
	Title    string
	Subtitle string
	Date     string
	TOC      *econnotes.TOC
	Blocks   []econnotes.Block

	// NotesDir is the directory of the notes file, used to resolve the
	// relative references it contains. Empty when no notes were inlined.
	NotesDir string
}

// Parse decodes a YAML content file. Each notes placeholder is replaced by
// notes; a placeholder with nil notes fails with ErrNotesNotFound.
// Structural problems in a block fail with ErrInvalidContent and, when the
// block itself is malformed, an *econnotes.ValidationError.
func Parse(data []byte, notes *econnotes.RichText) (*Page, error) {
	var spec fileSpec
	if err := yamlutil.UnmarshalStrict(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}

	page := &Page{
		Title:    spec.Title,
		Subtitle: spec.Subtitle,
		Date:     spec.Date,
	}
	if spec.TOC != nil {
		page.TOC = &econnotes.TOC{
			Title:    spec.TOC.Title,
			MinDepth: spec.TOC.MinDepth,
			MaxDepth: spec.TOC.MaxDepth,
		}
	}

	d := decoder{notes: notes}
	blocks, err := d.blocks(spec.Blocks, "blocks")
	if err != nil {
		return nil, err
	}
	page.Blocks = blocks
	return page, nil
}

// NeedsNotes reports whether data contains a notes placeholder. Columns are
// searched too.
func NeedsNotes(data []byte) (bool, error) {
	var spec fileSpec
	if err := yamlutil.Unmarshal(data, &spec); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}
	return hasNotes(spec.Blocks), nil
}

func hasNotes(specs []blockSpec) bool {
	for _, s := range specs {
		if s.Notes {
			return true
		}
		if s.Columns != nil {
			for _, cell := range s.Columns.Cells {
				if hasNotes(cell) {
					return true
				}
			}
		}
	}
	return false
}

type decoder struct {
	notes *econnotes.RichText
}

func (d decoder) blocks(specs []blockSpec, path string) ([]econnotes.Block, error) {
	out := make([]econnotes.Block, 0, len(specs))
	for i, s := range specs {
		at := path + "[" + strconv.Itoa(i) + "]"
		b, err := d.block(s, at)
		if err != nil {
			var verr *econnotes.ValidationError
			if errors.As(err, &verr) {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidContent, at, err)
			}
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (d decoder) block(s blockSpec, at string) (econnotes.Block, error) {
	if n := s.kinds(); n != 1 {
		return nil, fmt.Errorf("%w: %s: want exactly one block kind, got %d", ErrInvalidContent, at, n)
	}

	switch {
	case s.Notes:
		if d.notes == nil {
			return nil, fmt.Errorf("%w: %s: notes placeholder without notes", ErrNotesNotFound, at)
		}
		return d.notes, nil

	case s.Heading != nil:
		h := &econnotes.Heading{Level: s.Heading.Level, Text: s.Heading.Text, ID: s.Heading.ID}
		return h, h.Validate()

	case s.HTML != nil:
		return econnotes.HTML(*s.HTML), nil

	case s.Markdown != nil:
		return econnotes.Markdown(*s.Markdown), nil

	case s.RichText != nil:
		return econnotes.NewRichText(s.RichText.Format, s.RichText.Source)

	case s.Table != nil:
		return decodeTable(s.Table)

	case s.Chart != nil:
		return decodeChart(s.Chart)

	case s.Diagram != nil:
		return decodeDiagram(s.Diagram)

	case s.Image != nil:
		return econnotes.NewImage(s.Image.Src, s.Image.Caption)

	default:
		cells := make([][]econnotes.Block, len(s.Columns.Cells))
		for i, cell := range s.Columns.Cells {
			blocks, err := d.blocks(cell, at+".cells["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			cells[i] = blocks
		}
		return econnotes.NewColumns(s.Columns.Widths, cells...)
	}
}

// kinds counts the block kinds set on s.
func (s blockSpec) kinds() int {
	n := 0
	if s.Notes {
		n++
	}
	for _, set := range []bool{
		s.Heading != nil, s.HTML != nil, s.Markdown != nil, s.RichText != nil,
		s.Table != nil, s.Chart != nil, s.Diagram != nil, s.Image != nil,
		s.Columns != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func decodeTable(s *tableSpec) (econnotes.Block, error) {
	t := &econnotes.Table{
		Caption: s.Caption,
		Columns: yamlutil.Strings(s.Columns),
		Class:   s.Class,
	}
	for _, row := range s.Rows {
		t.Rows = append(t.Rows, yamlutil.Strings(row))
	}
	if s.Index != nil {
		t.Index = yamlutil.Strings(s.Index)
	}
	return t, t.Validate()
}

func decodeChart(s *chartSpec) (econnotes.Block, error) {
	c := &econnotes.Chart{
		Type:        econnotes.ChartKind(s.Type),
		Title:       s.Title,
		XLabel:      s.XLabel,
		YLabel:      s.YLabel,
		Legend:      s.Legend,
		Grid:        s.Grid,
		ValueFormat: s.ValueFormat,
		Width:       s.Width,
		Height:      s.Height,
	}
	if s.Categories != nil {
		c.Categories = yamlutil.Strings(s.Categories)
	}
	if l := s.Limits; l != nil {
		c.Limits = &econnotes.Limits{XMin: l.XMin, XMax: l.XMax, YMin: l.YMin, YMax: l.YMax}
	}
	for _, ss := range s.Series {
		series := econnotes.Series{Name: ss.Name, X: ss.X, Y: ss.Y}
		if st := ss.Style; st != nil {
			series.Style = &econnotes.SeriesStyle{
				Marker: st.Marker,
				Line:   st.Line,
				Color:  st.Color,
				Width:  st.Width,
			}
		}
		c.Series = append(c.Series, series)
	}
	return c, c.Validate()
}

func decodeDiagram(s *diagramSpec) (econnotes.Block, error) {
	d := &econnotes.Diagram{Title: s.Title, Width: s.Width, Height: s.Height}
	for _, n := range s.Nodes {
		d.Nodes = append(d.Nodes, econnotes.Node{
			Name:      n.Name,
			X:         n.X,
			Y:         n.Y,
			Shape:     n.Shape,
			FillColor: n.Fill,
			TextColor: n.Text,
		})
	}
	for _, e := range s.Edges {
		d.Edges = append(d.Edges, econnotes.Edge(e))
	}
	return d, d.Validate()
}
