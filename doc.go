// Package econnotes renders economics course notes as one self-contained
// HTML page: prose, tables, plotted charts and flow diagrams laid out in
// reading order.
//
// # Quick Start
//
// Describe the page as blocks and build it:
//
//	b, err := econnotes.NewBuilder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ppc, _ := econnotes.NewChart(econnotes.ChartLine, "Production Possibilities Curve",
//	    econnotes.Series{Name: "PPC", X: []float64{0, 1, 2}, Y: []float64{15, 14, 12}})
//
//	page, err := b.Build(ctx, econnotes.Input{
//	    Title: "Economics Study Notes",
//	    Blocks: []econnotes.Block{
//	        &econnotes.Heading{Level: 2, Text: "Scarcity"},
//	        econnotes.Markdown("Resources are ==limited==."),
//	        ppc,
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("notes.html", page.HTML, 0o644)
//
// Charts and diagrams are drawn to SVG with gonum/plot and embedded as data
// URIs, so the page has no external image dependencies of its own.
//
// # Pipeline
//
//  1. Every block is validated, then rendered in order by the Assembler
//     (markdown via goldmark, charts and diagrams via PlotRenderer)
//  2. Relative references are rewritten against Input.SourceDir
//  3. An optional numbered table of contents is built from the headings
//  4. The page template wraps the body and the theme CSS is injected
//
// A failing block stops assembly. The error is an *AssemblyError carrying
// the block index, and the fragments rendered before it are kept in
// Page.Document.
//
// # Blocks
//
// Heading, RichText (HTML or markdown), Table, Chart (line, bar, hbar,
// scatter), Diagram, Image and Columns. Table cells are displayed exactly as
// given. Columns lays other blocks side by side with relative widths.
//
// # Custom Assets
//
// Styles and the page template can be overridden from a directory:
//
//	b, err := econnotes.NewBuilder(
//	    econnotes.WithAssetPath("/path/to/assets"),
//	    econnotes.WithStyle("default"),
//	)
//
// Asset directory structure:
//
//	assets/
//	├── styles/
//	│   └── light.css
//	└── templates/
//	    └── page.html
//
// Missing files fall back to the embedded ones.
//
// # Errors
//
// Errors can be matched with errors.Is: ErrInvalidBlock for malformed
// blocks, ErrRender for drawing failures, ErrAssembly for any block
// failure, and the asset and TOC sentinels for configuration problems.
package econnotes
