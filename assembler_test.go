package econnotes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// stubRenderer returns a fixed artifact, or err when set.
type stubRenderer struct {
	err   error
	calls int
}

func (s *stubRenderer) RenderChart(c *Chart) (*Artifact, error) {
	s.calls++
	if s.err != nil {
		return nil, &RenderError{Kind: KindChart, Title: c.Title, Err: s.err}
	}
	return &Artifact{Title: c.Title, MediaType: MediaTypeSVG, Data: []byte("<svg/>"), Width: 2}, nil
}

func (s *stubRenderer) RenderDiagram(d *Diagram) (*Artifact, error) {
	s.calls++
	if s.err != nil {
		return nil, &RenderError{Kind: KindDiagram, Title: d.Title, Err: s.err}
	}
	return &Artifact{Title: d.Title, MediaType: MediaTypeSVG, Data: []byte("<svg/>"), Width: 3}, nil
}

func newStubAssembler(r *stubRenderer) *Assembler {
	return NewAssembler(WithChartRenderer(r), WithDiagramRenderer(r))
}

// tableShape parses fragment and returns the number of body rows and the
// cell count of each.
func tableShape(t *testing.T, fragment string) [][]string {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type: html.ElementNode, Data: "body", DataAtom: atom.Body,
	})
	if err != nil {
		t.Fatalf("parsing fragment: %v", err)
	}

	var rows [][]string
	var walk func(n *html.Node, inBody bool)
	walk = func(n *html.Node, inBody bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tbody {
			inBody = true
		}
		if inBody && n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					var text string
					if c.FirstChild != nil {
						text = c.FirstChild.Data
					}
					cells = append(cells, text)
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBody)
		}
	}
	for _, n := range nodes {
		walk(n, false)
	}
	return rows
}

// imgSources parses page and returns the decoded src of every img in
// document order.
func imgSources(t *testing.T, page string) []string {
	t.Helper()
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parsing HTML: %v", err)
	}

	var srcs []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			for _, a := range n.Attr {
				if a.Key == "src" {
					srcs = append(srcs, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return srcs
}

func TestAssemble_Empty(t *testing.T) {
	t.Parallel()

	doc, err := NewAssembler().Assemble(context.Background(), nil)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if doc.Len() != 0 || doc.HTML() != "" {
		t.Errorf("Assemble(nil) = %d fragments %q, want empty", doc.Len(), doc.HTML())
	}
}

func TestAssemble_OrderAndKinds(t *testing.T) {
	t.Parallel()

	stub := &stubRenderer{}
	blocks := []Block{
		&Heading{Level: 2, Text: "Graphs and Charts"},
		Markdown("Resources are ==limited=="),
		&Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}},
		&Chart{Type: ChartLine, Title: "PPC", Series: []Series{{X: []float64{0}, Y: []float64{1}}}},
		&Diagram{Nodes: []Node{{Name: "A"}}},
		&Image{Src: "ceiling.png", Caption: "Price ceiling"},
		HTML("<hr>"),
	}

	doc, err := newStubAssembler(stub).Assemble(context.Background(), blocks)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	var kinds []BlockKind
	for i, f := range doc.Fragments {
		if f.Index != i {
			t.Errorf("Fragments[%d].Index = %d", i, f.Index)
		}
		kinds = append(kinds, f.Kind)
	}
	want := []BlockKind{KindHeading, KindRichText, KindTable, KindChart, KindDiagram, KindImage, KindRichText}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	if stub.calls != 2 || len(doc.Artifacts()) != 2 {
		t.Errorf("renderer calls = %d, artifacts = %d, want 2 and 2", stub.calls, len(doc.Artifacts()))
	}

	out := doc.HTML()
	for _, s := range []string{
		`<h2 id="graphs-and-charts">Graphs and Charts</h2>`,
		"<mark>limited</mark>",
		`<figure class="figure figure-chart"><img src="data:image/svg`,
		`width="192"`,
		`<figcaption>Price ceiling</figcaption>`,
		"<hr>",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("HTML should contain %q\n%s", s, out)
		}
	}
	srcs := imgSources(t, out)
	if len(srcs) < 2 || !strings.HasPrefix(srcs[0], "data:image/svg+xml;base64,") || !strings.HasPrefix(srcs[1], "data:image/svg+xml;base64,") {
		t.Errorf("chart and diagram img src = %q, want base64 SVG data URIs", srcs)
	}
	if strings.Index(out, "graphs-and-charts") > strings.Index(out, "<hr>") {
		t.Error("fragments are out of order")
	}
}

func TestAssemble_TradeOffTable(t *testing.T) {
	t.Parallel()

	table := &Table{
		Columns: []string{"Combination", "Consumer Goods", "Capital Goods"},
		Rows: [][]string{
			{"A", "15", "0"}, {"B", "14", "1"}, {"C", "12", "2"},
			{"D", "9", "3"}, {"E", "5", "4"}, {"F", "0", "5"},
		},
	}
	doc, err := NewAssembler().Assemble(context.Background(), []Block{table})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	rows := tableShape(t, doc.Fragments[0].HTML)
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	for i, r := range rows {
		if len(r) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(r))
		}
	}
	if diff := cmp.Diff([]string{"D", "9", "3"}, rows[3]); diff != "" {
		t.Errorf("row 3 mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_TableIndexAndEscaping(t *testing.T) {
	t.Parallel()

	table := &Table{
		Caption: "Complex Cases",
		Columns: []string{"Supply", "Demand"},
		Rows:    [][]string{{"Increase", "<b>Decrease</b>"}, {"$5", "4"}},
		Index:   []string{"1", "2"},
		Class:   "supply-table",
	}
	doc, err := NewAssembler().Assemble(context.Background(), []Block{table})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	out := doc.HTML()
	for _, s := range []string{
		`<table class="supply-table">`,
		"<caption>Complex Cases</caption>",
		`<th scope="row">1</th>`,
		"&lt;b&gt;Decrease&lt;/b&gt;",
		"<td>$5</td>",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("HTML should contain %q\n%s", s, out)
		}
	}
	if rows := tableShape(t, out); len(rows[0]) != 3 {
		t.Errorf("indexed row has %d cells, want 3", len(rows[0]))
	}
}

func TestAssemble_FailureKeepsPrefix(t *testing.T) {
	t.Parallel()

	blocks := []Block{
		&Heading{Level: 2, Text: "One"},
		HTML("<p>two</p>"),
		Markdown("three"),
		&Table{Columns: []string{"a", "b"}, Rows: [][]string{{"only one"}}},
		&Heading{Level: 2, Text: "Never reached"},
	}

	doc, err := NewAssembler().Assemble(context.Background(), blocks)

	var aerr *AssemblyError
	if !errors.As(err, &aerr) {
		t.Fatalf("Assemble() error = %v, want *AssemblyError", err)
	}
	if aerr.Index != 3 || aerr.Kind != KindTable {
		t.Errorf("AssemblyError = index %d kind %q, want 3 table", aerr.Index, aerr.Kind)
	}
	if !errors.Is(err, ErrAssembly) || !errors.Is(err, ErrInvalidBlock) {
		t.Errorf("error should match ErrAssembly and ErrInvalidBlock: %v", err)
	}
	if doc.Len() != 3 {
		t.Errorf("partial document has %d fragments, want 3", doc.Len())
	}
	if strings.Contains(doc.HTML(), "Never reached") {
		t.Error("blocks after the failure were rendered")
	}
}

func TestAssemble_RenderFailure(t *testing.T) {
	t.Parallel()

	stub := &stubRenderer{err: errors.New("canvas exploded")}
	blocks := []Block{
		&Chart{Type: ChartLine, Title: "PPC", Series: []Series{{X: []float64{0}, Y: []float64{1}}}},
	}

	doc, err := newStubAssembler(stub).Assemble(context.Background(), blocks)
	if !errors.Is(err, ErrRender) || !errors.Is(err, ErrAssembly) {
		t.Fatalf("Assemble() error = %v, want ErrRender inside ErrAssembly", err)
	}
	if doc.Len() != 0 {
		t.Errorf("document has %d fragments, want 0", doc.Len())
	}
}

func TestAssemble_NilAndUnknownBlocks(t *testing.T) {
	t.Parallel()

	_, err := NewAssembler().Assemble(context.Background(), []Block{nil})
	if !errors.Is(err, ErrInvalidBlock) {
		t.Errorf("nil block error = %v, want ErrInvalidBlock", err)
	}
}

func TestAssemble_DuplicateHeadingAnchors(t *testing.T) {
	t.Parallel()

	blocks := []Block{
		&Heading{Level: 3, Text: "Demand Table"},
		&Columns{Cells: [][]Block{
			{&Heading{Level: 4, Text: "Demand Table"}},
			{&Heading{Level: 4, Text: "Demand Curve", ID: "curve"}},
		}},
		&Heading{Level: 3, Text: "Demand Table"},
	}

	doc, err := NewAssembler().Assemble(context.Background(), blocks)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	var ids []string
	for _, h := range doc.Headings() {
		ids = append(ids, h.ID)
	}
	want := []string{"demand-table", "demand-table-1", "curve", "demand-table-2"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("anchor mismatch (-want +got):\n%s", diff)
	}
	// The caller's block is not modified.
	if h := blocks[0].(*Heading); h.ID != "" {
		t.Errorf("input heading ID = %q, want untouched", h.ID)
	}
}

func TestAssemble_HeadingIDsSharedWithMarkdown(t *testing.T) {
	t.Parallel()

	blocks := []Block{
		Markdown("## Scarcity\n\nWants exceed resources."),
		&Heading{Level: 2, Text: "Scarcity"},
		&Heading{Level: 2, Text: "<em>Opportunity</em> Cost", ID: "cost"},
		Markdown("## Cost"),
	}

	doc, err := NewAssembler().Assemble(context.Background(), blocks)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	out := doc.HTML()
	for _, want := range []string{
		`<h2 id="scarcity">Scarcity</h2>`,
		`<h2 id="scarcity-1">Scarcity</h2>`,
		`<h2 id="cost"><em>Opportunity</em> Cost</h2>`,
		`<h2 id="cost-1">Cost</h2>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML should contain %q\n%s", want, out)
		}
	}
}

func TestAssemble_Columns(t *testing.T) {
	t.Parallel()

	stub := &stubRenderer{}
	cols := &Columns{
		Widths: []float64{1, 2},
		Cells: [][]Block{
			{&Table{Columns: []string{"Price"}, Rows: [][]string{{"5"}}}},
			{&Chart{Type: ChartLine, Title: "Supply", Series: []Series{{X: []float64{1}, Y: []float64{5}}}}},
		},
	}

	doc, err := newStubAssembler(stub).Assemble(context.Background(), []Block{cols})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	f := doc.Fragments[0]
	if f.Kind != KindColumns || len(f.Artifacts) != 1 {
		t.Errorf("fragment = %s with %d artifacts, want columns with 1", f.Kind, len(f.Artifacts))
	}
	for _, s := range []string{`<div class="columns">`, `style="flex: 1 1 0"`, `style="flex: 2 1 0"`} {
		if !strings.Contains(f.HTML, s) {
			t.Errorf("HTML should contain %q\n%s", s, f.HTML)
		}
	}
	if strings.Index(f.HTML, "<table") > strings.Index(f.HTML, "<figure") {
		t.Error("column cells are out of order")
	}
}

func TestAssemble_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := NewAssembler().Assemble(ctx, []Block{HTML("<p>x</p>")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Assemble() error = %v, want context.Canceled", err)
	}
	if doc.Len() != 0 {
		t.Errorf("document has %d fragments, want 0", doc.Len())
	}
}
