package econnotes

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Default figure size in inches.
const (
	DefaultChartWidth  = 5.5
	DefaultChartHeight = 3.5
)

const (
	defaultValueFormat = "%v"
	maxBarWidth        = 24.0 // points
	barLabelGap        = 4.0  // points between bar tip and its label
	barHeadroom        = 1.15 // value axis stretch so tip labels fit
)

// RenderChart draws c as an SVG. Invalid input yields a *ValidationError;
// drawing failures yield a *RenderError.
func (PlotRenderer) RenderChart(c *Chart) (art *Artifact, err error) {
	if c == nil {
		return nil, invalid(string(KindChart), "", "chart is nil")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			art = nil
			err = &RenderError{Kind: KindChart, Title: c.Title, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true
	if c.Grid {
		p.Add(plotter.NewGrid())
	}

	width, height := figureSize(c.Width, c.Height, DefaultChartWidth, DefaultChartHeight)

	var series []RenderedSeries
	if c.IsBar() {
		series, err = addBars(p, c, height, width)
	} else {
		series, err = addLines(p, c)
	}
	if err != nil {
		return nil, &RenderError{Kind: KindChart, Title: c.Title, Err: err}
	}
	applyLimits(p, c.Limits)

	data, err := drawSVG(p, width, height)
	if err != nil {
		return nil, &RenderError{Kind: KindChart, Title: c.Title, Err: err}
	}

	art = &Artifact{
		Title:     c.Title,
		MediaType: MediaTypeSVG,
		Data:      data,
		Width:     width,
		Height:    height,
		Series:    series,
	}
	if c.Legend {
		for _, s := range c.Series {
			art.Legend = append(art.Legend, s.Name)
		}
	}
	return art, nil
}

// addLines layers one line and/or scatter plotter per series, in order.
func addLines(p *plot.Plot, c *Chart) ([]RenderedSeries, error) {
	rendered := make([]RenderedSeries, 0, len(c.Series))
	for i, s := range c.Series {
		look, err := resolveLook(c.Type, i, s.Style)
		if err != nil {
			return nil, err
		}
		pts := toXYs(s)

		var thumbs []plot.Thumbnailer
		if look.line != LineNone {
			l, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("series %q: %w", s.Name, err)
			}
			l.LineStyle = look.lineStyle()
			p.Add(l)
			thumbs = append(thumbs, l)
		}
		if look.marker != MarkerNone {
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("series %q: %w", s.Name, err)
			}
			sc.GlyphStyle = look.glyphStyle()
			p.Add(sc)
			thumbs = append(thumbs, sc)
		}
		if c.Legend {
			p.Legend.Add(s.Name, thumbs...)
		}
		rendered = append(rendered, renderedSeries(s))
	}
	return rendered, nil
}

// addBars draws one bar per category for every series. Multiple series are
// grouped side by side. Horizontal charts list the first category on top.
func addBars(p *plot.Plot, c *Chart, height, width float64) ([]RenderedSeries, error) {
	n := len(c.Categories)
	horizontal := c.Type == ChartHBar

	// Category k sits at position k, or n-1-k when listed top-down.
	pos := func(k int) float64 {
		if horizontal {
			return float64(n - 1 - k)
		}
		return float64(k)
	}

	span := width
	if horizontal {
		span = height
	}
	barW := vg.Length(math.Min(maxBarWidth, span*72*0.6/float64(n*len(c.Series))))

	format := c.ValueFormat
	if format == "" {
		format = defaultValueFormat
	}
	printer := message.NewPrinter(language.English)

	peak := 0.0
	rendered := make([]RenderedSeries, 0, len(c.Series))
	for i, s := range c.Series {
		look, err := resolveLook(c.Type, i, s.Style)
		if err != nil {
			return nil, err
		}

		values := make(plotter.Values, n)
		labels := plotter.XYLabels{XYs: make(plotter.XYs, n), Labels: make([]string, n)}
		for k, v := range s.Y {
			values[int(pos(k))] = v
			if horizontal {
				labels.XYs[k] = plotter.XY{X: v, Y: pos(k)}
			} else {
				labels.XYs[k] = plotter.XY{X: pos(k), Y: v}
			}
			labels.Labels[k] = printer.Sprintf(format, v)
			peak = math.Max(peak, v)
		}

		bars, err := plotter.NewBarChart(values, barW)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		bars.Color = look.color
		bars.LineStyle.Width = 0
		bars.Horizontal = horizontal
		offset := barW * vg.Length(float64(i)-float64(len(c.Series)-1)/2)
		bars.Offset = offset
		p.Add(bars)

		tips, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("series %q labels: %w", s.Name, err)
		}
		for k := range tips.TextStyle {
			tips.TextStyle[k].Font.Size = vg.Points(8)
			if horizontal {
				tips.TextStyle[k].XAlign = draw.XLeft
				tips.TextStyle[k].YAlign = draw.YCenter
			} else {
				tips.TextStyle[k].XAlign = draw.XCenter
				tips.TextStyle[k].YAlign = draw.YBottom
			}
		}
		if horizontal {
			tips.Offset = vg.Point{X: vg.Points(barLabelGap), Y: offset}
		} else {
			tips.Offset = vg.Point{X: offset, Y: vg.Points(barLabelGap)}
		}
		p.Add(tips)

		if c.Legend {
			p.Legend.Add(s.Name, bars)
		}
		rendered = append(rendered, renderedSeries(s))
	}

	names := make([]string, n)
	for k, name := range c.Categories {
		names[int(pos(k))] = name
	}
	value := &p.Y
	if horizontal {
		p.NominalY(names...)
		value = &p.X
	} else {
		p.NominalX(names...)
	}
	value.Min = math.Min(value.Min, 0)
	if peak > 0 {
		value.Max = math.Max(value.Max, peak*barHeadroom)
	}
	return rendered, nil
}

func applyLimits(p *plot.Plot, l *Limits) {
	if l == nil {
		return
	}
	if l.XMin != nil {
		p.X.Min = *l.XMin
	}
	if l.XMax != nil {
		p.X.Max = *l.XMax
	}
	if l.YMin != nil {
		p.Y.Min = *l.YMin
	}
	if l.YMax != nil {
		p.Y.Max = *l.YMax
	}
}

// drawSVG renders p onto a fresh SVG canvas of the given size in inches.
func drawSVG(p *plot.Plot, width, height float64) ([]byte, error) {
	c := vgsvg.New(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch)
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encoding svg: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("encoding svg: empty output")
	}
	return buf.Bytes(), nil
}

func figureSize(w, h, defW, defH float64) (float64, float64) {
	if w == 0 {
		w = defW
	}
	if h == 0 {
		h = defH
	}
	return w, h
}

func toXYs(s Series) plotter.XYs {
	pts := make(plotter.XYs, s.Len())
	for i, p := range s.points() {
		pts[i].X, pts[i].Y = p.X, p.Y
	}
	return pts
}

func renderedSeries(s Series) RenderedSeries {
	return RenderedSeries{Name: s.Name, Points: s.points()}
}
