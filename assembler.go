package econnotes

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"strconv"

	"github.com/yuin/goldmark/parser"

	"github.com/alnah/go-econnotes/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.NotesPreprocessor)(nil)
	_ pipeline.MarkdownRenderer     = (*pipeline.Goldmark)(nil)
)

// cssPixelsPerInch converts figure sizes to <img> widths.
const cssPixelsPerInch = 96

var fragmentTemplates = template.Must(template.New("fragments").Parse(`
{{- define "table" -}}
<div class="table-wrap"><table{{with .Class}} class="{{.}}"{{end}}>
{{- with .Caption}}<caption>{{.}}</caption>{{end -}}
<thead><tr>{{if .Index}}<th></th>{{end}}{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range $i, $row := .Rows}}
<tr>{{if $.Index}}<th scope="row">{{index $.Index $i}}</th>{{end}}{{range $row}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody></table></div>
{{- end -}}

{{- define "figure" -}}
<figure class="figure figure-{{.Kind}}"><img src="{{.Src}}" alt="{{.Alt}}"{{if .Width}} width="{{.Width}}"{{end}}>
{{- with .Caption}}<figcaption>{{.}}</figcaption>{{end}}</figure>
{{- end -}}

{{- define "columns" -}}
<div class="columns">
{{- range .}}<div class="column" style="{{.Style}}">{{.Body}}</div>{{end -}}
</div>
{{- end -}}
`))

type figureView struct {
	Kind    string
	Src     template.URL
	Alt     string
	Width   int
	Caption string
}

type columnView struct {
	Style template.CSS
	Body  template.HTML
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithChartRenderer replaces the chart renderer.
func WithChartRenderer(r ChartRenderer) AssemblerOption {
	return func(a *Assembler) { a.charts = r }
}

// WithDiagramRenderer replaces the diagram renderer.
func WithDiagramRenderer(r DiagramRenderer) AssemblerOption {
	return func(a *Assembler) { a.diagrams = r }
}

// Assembler turns an ordered block sequence into a Document in one
// sequential pass. It holds no per-call state and is safe for concurrent
// use.
type Assembler struct {
	charts       ChartRenderer
	diagrams     DiagramRenderer
	preprocessor pipeline.MarkdownPreprocessor
	markdown     pipeline.MarkdownRenderer
}

// NewAssembler creates an Assembler backed by PlotRenderer and goldmark.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		charts:       PlotRenderer{},
		diagrams:     PlotRenderer{},
		preprocessor: &pipeline.NotesPreprocessor{},
		markdown:     pipeline.NewGoldmark(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders blocks in order. Every block is validated before it is
// rendered. On the first failure it stops and returns the fragments built
// so far together with an *AssemblyError carrying the failing index. An
// empty sequence yields an empty Document.
func (a *Assembler) Assemble(ctx context.Context, blocks []Block) (*Document, error) {
	doc := &Document{Fragments: make([]Fragment, 0, len(blocks))}
	ids := pipeline.NewHeadingIDs()

	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return doc, err
		}
		frag, err := a.render(ctx, b, ids)
		if err != nil {
			return doc, &AssemblyError{Index: i, Kind: kindOf(b), Err: err}
		}
		frag.Index = i
		doc.Fragments = append(doc.Fragments, frag)
	}
	return doc, nil
}

func kindOf(b Block) BlockKind {
	if b == nil {
		return ""
	}
	return b.Kind()
}

func (a *Assembler) render(ctx context.Context, b Block, ids parser.IDs) (Fragment, error) {
	if b == nil {
		return Fragment{}, invalid("block", "", "block is nil")
	}
	if err := b.Validate(); err != nil {
		return Fragment{}, err
	}

	frag := Fragment{Kind: b.Kind()}
	var err error

	switch v := b.(type) {
	case *Heading:
		h := *v
		if h.ID == "" {
			h.ID = pipeline.HeadingID(ids, h.Text)
		} else {
			ids.Put([]byte(h.ID))
		}
		frag.HTML = renderHeading(h)
		frag.Headings = []Heading{h}

	case *RichText:
		frag.HTML, err = a.renderRichText(ctx, v, ids)

	case *Table:
		frag.HTML, err = execute("table", v)

	case *Chart:
		var art *Artifact
		if art, err = a.charts.RenderChart(v); err == nil {
			frag.HTML, err = renderFigure(art, string(KindChart))
			frag.Artifacts = []*Artifact{art}
		}

	case *Diagram:
		var art *Artifact
		if art, err = a.diagrams.RenderDiagram(v); err == nil {
			frag.HTML, err = renderFigure(art, string(KindDiagram))
			frag.Artifacts = []*Artifact{art}
		}

	case *Image:
		frag.HTML, err = execute("figure", figureView{
			Kind:    string(KindImage),
			Src:     template.URL(v.Src), // #nosec G203 -- references come from the trusted content source
			Alt:     v.Caption,
			Caption: v.Caption,
		})

	case *Columns:
		frag, err = a.renderColumns(ctx, v, ids)

	default:
		return Fragment{}, fmt.Errorf("%w: %T", ErrUnknownBlock, b)
	}

	if err != nil {
		return Fragment{}, err
	}
	return frag, nil
}

// renderHeading emits the heading text as-is; it is trusted inline markup.
func renderHeading(h Heading) string {
	level := strconv.Itoa(h.Level)
	return "<h" + level + ` id="` + html.EscapeString(h.ID) + `">` + h.Text + "</h" + level + ">"
}

func (a *Assembler) renderRichText(ctx context.Context, r *RichText, ids parser.IDs) (string, error) {
	if r.Format == FormatHTML {
		return r.Source, nil
	}
	src := a.preprocessor.PreprocessMarkdown(ctx, r.Source)
	out, err := a.markdown.RenderMarkdown(ctx, src, ids)
	if err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return pipeline.ConvertMarkPlaceholders(out), nil
}

func (a *Assembler) renderColumns(ctx context.Context, c *Columns, ids parser.IDs) (Fragment, error) {
	frag := Fragment{Kind: KindColumns}
	views := make([]columnView, len(c.Cells))

	for i, cell := range c.Cells {
		var body bytes.Buffer
		for _, b := range cell {
			inner, err := a.render(ctx, b, ids)
			if err != nil {
				return Fragment{}, fmt.Errorf("column %d: %w", i, err)
			}
			body.WriteString(inner.HTML)
			frag.Artifacts = append(frag.Artifacts, inner.Artifacts...)
			frag.Headings = append(frag.Headings, inner.Headings...)
		}

		weight := 1.0
		if c.Widths != nil {
			weight = c.Widths[i]
		}
		views[i] = columnView{
			Style: template.CSS("flex: " + strconv.FormatFloat(weight, 'g', -1, 64) + " 1 0"),
			Body:  template.HTML(body.String()), // #nosec G203 -- rendered by this package
		}
	}

	var err error
	frag.HTML, err = execute("columns", views)
	return frag, err
}

func renderFigure(art *Artifact, kind string) (string, error) {
	return execute("figure", figureView{
		Kind:  kind,
		Src:   template.URL(art.DataURI()), // #nosec G203 -- data URI built from rendered bytes
		Alt:   art.Title,
		Width: int(art.Width * cssPixelsPerInch),
	})
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := fragmentTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s markup: %w", name, err)
	}
	return buf.String(), nil
}
