package econnotes

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	defaultLineWidth = 1.5 // points
	defaultMarkSize  = 3.0 // glyph radius in points
)

var dashPatterns = map[string][]vg.Length{
	LineSolid:  nil,
	LineDashed: {vg.Points(6), vg.Points(3)},
	LineDotted: {vg.Points(1.5), vg.Points(2.5)},
}

// scatterMarkers is the glyph cycle for marker-only series.
var scatterMarkers = []string{MarkerCircle, MarkerCross, MarkerSquare, MarkerTriangle, MarkerRing, MarkerPlus}

// seriesLook is a fully resolved series style.
type seriesLook struct {
	color  color.Color
	line   string // LineNone hides the connecting line
	marker string // MarkerNone hides point glyphs
	width  vg.Length
}

// defaultLook returns the style used for the i-th series of a chart when
// nothing is set. Line charts cycle solid, dashed, then marker-only so that
// series stay distinguishable even in grayscale.
func defaultLook(kind ChartKind, i int) seriesLook {
	look := seriesLook{
		color: plotutil.Color(i),
		width: vg.Points(defaultLineWidth),
	}
	if kind == ChartScatter {
		look.line = LineNone
		look.marker = scatterMarkers[i%len(scatterMarkers)]
		return look
	}
	switch i % 3 {
	case 0:
		look.line, look.marker = LineSolid, MarkerCircle
	case 1:
		look.line, look.marker = LineDashed, MarkerCircle
	default:
		look.line, look.marker = LineNone, MarkerCross
	}
	return look
}

// resolveLook overlays an explicit style on the defaults for index i.
func resolveLook(kind ChartKind, i int, st *SeriesStyle) (seriesLook, error) {
	look := defaultLook(kind, i)
	if st == nil {
		return look, nil
	}
	if st.Color != "" {
		c, err := parseColor(st.Color)
		if err != nil {
			return look, err
		}
		look.color = c
	}
	if st.Line != "" {
		look.line = st.Line
	}
	if st.Marker != "" {
		look.marker = st.Marker
	}
	if st.Width > 0 {
		look.width = vg.Points(st.Width)
	}
	if kind != ChartBar && kind != ChartHBar && look.line == LineNone && look.marker == MarkerNone {
		return look, fmt.Errorf("series %d draws neither a line nor markers", i)
	}
	return look, nil
}

func (l seriesLook) lineStyle() draw.LineStyle {
	return draw.LineStyle{
		Color:  l.color,
		Width:  l.width,
		Dashes: dashPatterns[l.line],
	}
}

func (l seriesLook) glyphStyle() draw.GlyphStyle {
	return draw.GlyphStyle{
		Color:  l.color,
		Radius: vg.Points(defaultMarkSize),
		Shape:  glyphFor(l.marker),
	}
}

func glyphFor(marker string) draw.GlyphDrawer {
	switch marker {
	case MarkerCross:
		return draw.CrossGlyph{}
	case MarkerSquare:
		return draw.BoxGlyph{}
	case MarkerTriangle:
		return draw.PyramidGlyph{}
	case MarkerRing:
		return draw.RingGlyph{}
	case MarkerPlus:
		return draw.PlusGlyph{}
	default:
		return draw.CircleGlyph{}
	}
}

// parseColor accepts an SVG/X11 color name ("teal", "skyblue") or a hex
// triplet ("#1f77b4", "#fff").
func parseColor(s string) (color.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, "#") {
		c, err := colorful.Hex(name)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return c, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown color %q", s)
}

// mustColor parses a color known to be valid (validated upstream), falling
// back to fallback otherwise.
func mustColor(s string, fallback color.Color) color.Color {
	if s == "" {
		return fallback
	}
	c, err := parseColor(s)
	if err != nil {
		return fallback
	}
	return c
}
