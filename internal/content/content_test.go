package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-econnotes"
	"github.com/alnah/go-econnotes/internal/assets"
)

// flatten lists blocks depth first, descending into columns.
func flatten(blocks []econnotes.Block) []econnotes.Block {
	var out []econnotes.Block
	for _, b := range blocks {
		out = append(out, b)
		if c, ok := b.(*econnotes.Columns); ok {
			for _, cell := range c.Cells {
				out = append(out, flatten(cell)...)
			}
		}
	}
	return out
}

func findChart(t *testing.T, blocks []econnotes.Block, title string) *econnotes.Chart {
	t.Helper()
	for _, b := range flatten(blocks) {
		if c, ok := b.(*econnotes.Chart); ok && c.Title == title {
			return c
		}
	}
	t.Fatalf("chart %q not found", title)
	return nil
}

func findTable(t *testing.T, blocks []econnotes.Block, firstColumn string) *econnotes.Table {
	t.Helper()
	for _, b := range flatten(blocks) {
		if tb, ok := b.(*econnotes.Table); ok && len(tb.Columns) > 0 && tb.Columns[0] == firstColumn {
			return tb
		}
	}
	t.Fatalf("table starting with column %q not found", firstColumn)
	return nil
}

func loadEconomics(t *testing.T) *Page {
	t.Helper()
	data, err := assets.NewEmbeddedLoader().LoadContent(assets.DefaultContentName)
	if err != nil {
		t.Fatalf("LoadContent() error = %v", err)
	}
	page, err := Parse(data, econnotes.HTML("<p>Lecture one</p>"))
	if err != nil {
		t.Fatalf("Parse(economics) error = %v", err)
	}
	return page
}

func TestParse_Economics(t *testing.T) {
	t.Parallel()

	page := loadEconomics(t)

	if page.Title != "Economics Study Notes" {
		t.Errorf("Title = %q, want %q", page.Title, "Economics Study Notes")
	}
	if page.TOC == nil || page.TOC.MinDepth != 2 || page.TOC.MaxDepth != 3 {
		t.Errorf("TOC = %+v, want depths 2..3", page.TOC)
	}

	t.Run("notes follow the lecture notes heading", func(t *testing.T) {
		t.Parallel()

		h, ok := page.Blocks[0].(*econnotes.Heading)
		if !ok || h.Text != "Lecture Notes" {
			t.Fatalf("Blocks[0] = %#v, want Lecture Notes heading", page.Blocks[0])
		}
		notes, ok := page.Blocks[1].(*econnotes.RichText)
		if !ok || notes.Source != "<p>Lecture one</p>" {
			t.Errorf("Blocks[1] = %#v, want inlined notes", page.Blocks[1])
		}
	})

	t.Run("budget line", func(t *testing.T) {
		t.Parallel()

		c := findChart(t, page.Blocks, "The Consumer’s Budget Line")
		if c.Type != econnotes.ChartLine || len(c.Series) != 1 {
			t.Fatalf("chart = %+v, want one line series", c)
		}
		want := econnotes.Series{
			Name:  "Budget line",
			X:     []float64{0, 2, 4, 6, 8, 10, 12},
			Y:     []float64{6, 5, 4, 3, 2, 1, 0},
			Style: &econnotes.SeriesStyle{Marker: "circle", Line: "solid", Color: "teal"},
		}
		if diff := cmp.Diff(want, c.Series[0]); diff != "" {
			t.Errorf("series mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("income bars keep category order", func(t *testing.T) {
		t.Parallel()

		c := findChart(t, page.Blocks, "Average Income, Selected Nations (2014)")
		if c.Type != econnotes.ChartHBar {
			t.Errorf("Type = %q, want hbar", c.Type)
		}
		if len(c.Categories) != 12 || c.Categories[0] != "Norway" || c.Categories[11] != "Malawi" {
			t.Errorf("Categories = %v, want Norway..Malawi", c.Categories)
		}
		if c.Series[0].Y[0] != 103630 || c.ValueFormat != "$%.0f" {
			t.Errorf("first value = %v format = %q", c.Series[0].Y[0], c.ValueFormat)
		}
	})

	t.Run("demand chart limits", func(t *testing.T) {
		t.Parallel()

		c := findChart(t, page.Blocks, "Demand Curve for Corn")
		if c.Limits == nil || *c.Limits.XMax != 90 || *c.Limits.YMax != 6 {
			t.Errorf("Limits = %+v, want x<=90 y<=6", c.Limits)
		}
	})

	t.Run("trade-off table is 6x3 and literal", func(t *testing.T) {
		t.Parallel()

		tb := findTable(t, page.Blocks, "Combination")
		if len(tb.Rows) != 6 || len(tb.Columns) != 3 {
			t.Fatalf("table is %dx%d, want 6x3", len(tb.Rows), len(tb.Columns))
		}
		if diff := cmp.Diff([]string{"A", "15", "0"}, tb.Rows[0]); diff != "" {
			t.Errorf("first row mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("mixed cells are kept verbatim", func(t *testing.T) {
		t.Parallel()

		tb := findTable(t, page.Blocks, "Price per Bushel")
		got := []string{tb.Rows[0][0], tb.Rows[1][0]}
		if diff := cmp.Diff([]string{"$5", "4"}, got); diff != "" {
			t.Errorf("price cells mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("complex cases carry their index", func(t *testing.T) {
		t.Parallel()

		tb := findTable(t, page.Blocks, "Change in Supply")
		if diff := cmp.Diff([]string{"1", "2", "3", "4"}, tb.Index); diff != "" {
			t.Errorf("Index mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("circular flow", func(t *testing.T) {
		t.Parallel()

		var d *econnotes.Diagram
		for _, b := range page.Blocks {
			if v, ok := b.(*econnotes.Diagram); ok {
				d = v
			}
		}
		if d == nil {
			t.Fatal("diagram not found")
		}
		if len(d.Nodes) != 4 || len(d.Edges) != 8 {
			t.Errorf("diagram has %d nodes and %d edges, want 4 and 8", len(d.Nodes), len(d.Edges))
		}
		dashed := 0
		for _, e := range d.Edges {
			if e.Style == econnotes.LineDashed {
				dashed++
			}
		}
		if dashed != 4 {
			t.Errorf("%d dashed edges, want 4", dashed)
		}
	})
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		notes     *econnotes.RichText
		wantErr   error
		wantValid bool // also an *econnotes.ValidationError
	}{
		{
			name:    "notes placeholder without notes",
			input:   "blocks:\n  - notes: true\n",
			wantErr: ErrNotesNotFound,
		},
		{
			name:    "two kinds in one entry",
			input:   "blocks:\n  - heading: {level: 2, text: A}\n    markdown: b\n",
			wantErr: ErrInvalidContent,
		},
		{
			name:    "empty entry",
			input:   "blocks:\n  - {}\n",
			wantErr: ErrInvalidContent,
		},
		{
			name:    "unknown key",
			input:   "blocks:\n  - heading: {level: 2, text: A, colour: red}\n",
			wantErr: ErrInvalidContent,
		},
		{
			name:      "ragged table",
			input:     "blocks:\n  - table:\n      columns: [a, b]\n      rows:\n        - [1, 2]\n        - [3]\n",
			wantErr:   ErrInvalidContent,
			wantValid: true,
		},
		{
			name:      "edge to unknown node",
			input:     "blocks:\n  - diagram:\n      nodes: [{name: A}]\n      edges: [{from: A, to: B}]\n",
			wantErr:   ErrInvalidContent,
			wantValid: true,
		},
		{
			name:      "empty series",
			input:     "blocks:\n  - chart:\n      type: line\n      series: []\n",
			wantErr:   ErrInvalidContent,
			wantValid: true,
		},
		{
			name:      "invalid block inside columns",
			input:     "blocks:\n  - columns:\n      cells:\n        - - image: {src: \"\"}\n",
			wantErr:   ErrInvalidContent,
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.input), tt.notes)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			var verr *econnotes.ValidationError
			if got := errors.As(err, &verr); got != tt.wantValid {
				t.Errorf("errors.As(ValidationError) = %v, want %v (err: %v)", got, tt.wantValid, err)
			}
		})
	}
}

func TestNeedsNotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "top level", input: "blocks:\n  - notes: true\n", want: true},
		{name: "inside columns", input: "blocks:\n  - columns:\n      cells:\n        - - notes: true\n", want: true},
		{name: "absent", input: "blocks:\n  - markdown: hi\n", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NeedsNotes([]byte(tt.input))
			if err != nil {
				t.Fatalf("NeedsNotes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NeedsNotes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadNotes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
		return path
	}

	t.Run("html fragment", func(t *testing.T) {
		t.Parallel()

		got, err := ReadNotes(write("fragment.html", "<h2>Scarcity</h2>"))
		if err != nil {
			t.Fatalf("ReadNotes() error = %v", err)
		}
		if got.Format != econnotes.FormatHTML || got.Source != "<h2>Scarcity</h2>" {
			t.Errorf("ReadNotes() = %+v, want fragment unchanged", got)
		}
	})

	t.Run("full document is reduced", func(t *testing.T) {
		t.Parallel()

		doc := "\uFEFF<!DOCTYPE html><html><head><title>Notes</title><style>p{color:red}</style></head>" +
			"<body><h2>Choice</h2></body></html>"
		got, err := ReadNotes(write("full.html", doc))
		if err != nil {
			t.Fatalf("ReadNotes() error = %v", err)
		}
		if strings.Contains(got.Source, "<title>") || strings.Contains(got.Source, "<body>") {
			t.Errorf("Source = %q, want head and body wrappers removed", got.Source)
		}
		for _, want := range []string{"<style>p{color:red}</style>", "<h2>Choice</h2>"} {
			if !strings.Contains(got.Source, want) {
				t.Errorf("Source = %q, should contain %q", got.Source, want)
			}
		}
	})

	t.Run("markdown by extension", func(t *testing.T) {
		t.Parallel()

		got, err := ReadNotes(write("notes.MD", "\uFEFF# Notes"))
		if err != nil {
			t.Fatalf("ReadNotes() error = %v", err)
		}
		if got.Format != econnotes.FormatMarkdown || got.Source != "# Notes" {
			t.Errorf("ReadNotes() = %+v, want markdown without BOM", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := ReadNotes(filepath.Join(dir, "absent.html"))
		if !errors.Is(err, ErrNotesNotFound) {
			t.Errorf("ReadNotes() error = %v, want ErrNotesNotFound", err)
		}
	})
}

func TestNotesFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"notes.html":           econnotes.FormatHTML,
		"Econ_Lecture.htm":     econnotes.FormatHTML,
		"notes.md":             econnotes.FormatMarkdown,
		"notes.markdown":       econnotes.FormatMarkdown,
		"dir.md/notes":         econnotes.FormatHTML,
		"no-extension":         econnotes.FormatHTML,
		"/abs/path/Lecture.Md": econnotes.FormatMarkdown,
	}
	for path, want := range tests {
		if got := NotesFormat(path); got != want {
			t.Errorf("NotesFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestSource_Load(t *testing.T) {
	t.Parallel()

	t.Run("embedded content without notes file", func(t *testing.T) {
		t.Parallel()

		_, err := Source{}.Load()
		if !errors.Is(err, ErrNotesNotFound) {
			t.Errorf("Load() error = %v, want ErrNotesNotFound", err)
		}
	})

	t.Run("embedded content with missing notes file", func(t *testing.T) {
		t.Parallel()

		_, err := Source{NotesPath: filepath.Join(t.TempDir(), "gone.html")}.Load()
		if !errors.Is(err, ErrNotesNotFound) {
			t.Errorf("Load() error = %v, want ErrNotesNotFound", err)
		}
	})

	t.Run("content file and notes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		contentPath := filepath.Join(dir, "page.yaml")
		notesPath := filepath.Join(dir, "notes", "lecture.md")
		if err := os.MkdirAll(filepath.Dir(notesPath), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(contentPath, []byte("title: Week 1\nblocks:\n  - notes: true\n  - image: {src: ppc.png, caption: PPC}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(notesPath, []byte("## Scarcity"), 0o644); err != nil {
			t.Fatal(err)
		}

		page, err := Source{ContentPath: contentPath, NotesPath: notesPath}.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if page.Title != "Week 1" || len(page.Blocks) != 2 {
			t.Errorf("page = %+v, want title and two blocks", page)
		}
		wantDir, _ := filepath.Abs(filepath.Dir(notesPath))
		if page.NotesDir != wantDir {
			t.Errorf("NotesDir = %q, want %q", page.NotesDir, wantDir)
		}
	})

	t.Run("content without placeholder ignores notes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		contentPath := filepath.Join(dir, "page.yaml")
		if err := os.WriteFile(contentPath, []byte("blocks:\n  - markdown: only text\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		page, err := Source{ContentPath: contentPath}.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if page.NotesDir != "" {
			t.Errorf("NotesDir = %q, want empty", page.NotesDir)
		}
	})

	t.Run("custom asset loader", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "content"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "content", "micro.yaml"), []byte("blocks:\n  - heading: {level: 2, text: Elasticity}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		resolver, err := assets.NewAssetResolver(dir)
		if err != nil {
			t.Fatal(err)
		}

		page, err := Source{ContentName: "micro", Loader: resolver}.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if h, ok := page.Blocks[0].(*econnotes.Heading); !ok || h.Text != "Elasticity" {
			t.Errorf("Blocks[0] = %#v, want Elasticity heading", page.Blocks[0])
		}
	})
}

func TestParse_TableCellsVerbatim(t *testing.T) {
	t.Parallel()

	input := `blocks:
  - table:
      columns: [Price, Quantity, Note]
      index: [1, 2.0, ~]
      rows:
        - [1.50, 1e3, "$5"]
        - [2.00, 0x1F, 007]
        - [-0.25, 16000, null]
  - chart:
      type: bar
      title: Output
      categories: [2020, 2021.0]
      series:
        - {name: GDP, x: [0, 1], y: [3, 4]}
`
	page, err := Parse([]byte(input), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tb := page.Blocks[0].(*econnotes.Table)
	want := [][]string{
		{"1.50", "1e3", "$5"},
		{"2.00", "0x1F", "007"},
		{"-0.25", "16000", ""},
	}
	if diff := cmp.Diff(want, tb.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2.0", ""}, tb.Index); diff != "" {
		t.Errorf("Index mismatch (-want +got):\n%s", diff)
	}

	c := page.Blocks[1].(*econnotes.Chart)
	if diff := cmp.Diff([]string{"2020", "2021.0"}, c.Categories); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TableCellNotScalar(t *testing.T) {
	t.Parallel()

	input := "blocks:\n  - table:\n      columns: [a]\n      rows:\n        - [{x: 1}]\n"
	if _, err := Parse([]byte(input), nil); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("Parse() error = %v, want ErrInvalidContent", err)
	}
}
