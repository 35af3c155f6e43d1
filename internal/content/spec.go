package content

import "github.com/alnah/go-econnotes/internal/yamlutil"

// The types below mirror the YAML layout of a content file. Each entry of
// blocks holds exactly one key naming its kind:
//
//	blocks:
//	  - heading: {level: 2, text: Lecture Notes}
//	  - notes: true
//	  - markdown: "Resources are **limited**."
//	  - chart: {type: line, title: PPC, series: [...]}

type fileSpec struct {
	Title    string      `yaml:"title"`
	Subtitle string      `yaml:"subtitle"`
	Date     string      `yaml:"date"`
	TOC      *tocSpec    `yaml:"toc"`
	Blocks   []blockSpec `yaml:"blocks"`
}

type tocSpec struct {
	Title    string `yaml:"title"`
	MinDepth int    `yaml:"min_depth"`
	MaxDepth int    `yaml:"max_depth"`
}

type blockSpec struct {
	Notes    bool          `yaml:"notes"`
	Heading  *headingSpec  `yaml:"heading"`
	HTML     *string       `yaml:"html"`
	Markdown *string       `yaml:"markdown"`
	RichText *richTextSpec `yaml:"richtext"`
	Table    *tableSpec    `yaml:"table"`
	Chart    *chartSpec    `yaml:"chart"`
	Diagram  *diagramSpec  `yaml:"diagram"`
	Image    *imageSpec    `yaml:"image"`
	Columns  *columnsSpec  `yaml:"columns"`
}

type headingSpec struct {
	Level int    `yaml:"level"`
	Text  string `yaml:"text"`
	ID    string `yaml:"id"`
}

type richTextSpec struct {
	Format string `yaml:"format"`
	Source string `yaml:"source"`
}

type tableSpec struct {
	Caption string              `yaml:"caption"`
	Columns []yamlutil.Scalar   `yaml:"columns"`
	Rows    [][]yamlutil.Scalar `yaml:"rows"`
	Index   []yamlutil.Scalar   `yaml:"index"`
	Class   string              `yaml:"class"`
}

type chartSpec struct {
	Type        string            `yaml:"type"`
	Title       string            `yaml:"title"`
	XLabel      string            `yaml:"x_label"`
	YLabel      string            `yaml:"y_label"`
	Categories  []yamlutil.Scalar `yaml:"categories"`
	Legend      bool              `yaml:"legend"`
	Grid        bool              `yaml:"grid"`
	Limits      *limitsSpec       `yaml:"limits"`
	ValueFormat string            `yaml:"value_format"`
	Width       float64           `yaml:"width"`
	Height      float64           `yaml:"height"`
	Series      []seriesSpec      `yaml:"series"`
}

type limitsSpec struct {
	XMin *float64 `yaml:"x_min"`
	XMax *float64 `yaml:"x_max"`
	YMin *float64 `yaml:"y_min"`
	YMax *float64 `yaml:"y_max"`
}

type seriesSpec struct {
	Name  string     `yaml:"name"`
	X     []float64  `yaml:"x"`
	Y     []float64  `yaml:"y"`
	Style *styleSpec `yaml:"style"`
}

type styleSpec struct {
	Marker string  `yaml:"marker"`
	Line   string  `yaml:"line"`
	Color  string  `yaml:"color"`
	Width  float64 `yaml:"width"`
}

type diagramSpec struct {
	Title  string     `yaml:"title"`
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Nodes  []nodeSpec `yaml:"nodes"`
	Edges  []edgeSpec `yaml:"edges"`
}

type nodeSpec struct {
	Name  string  `yaml:"name"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Shape string  `yaml:"shape"`
	Fill  string  `yaml:"fill"`
	Text  string  `yaml:"text"`
}

type edgeSpec struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Label string `yaml:"label"`
	Style string `yaml:"style"`
}

type imageSpec struct {
	Src     string `yaml:"src"`
	Caption string `yaml:"caption"`
}

type columnsSpec struct {
	Widths []float64     `yaml:"widths"`
	Cells  [][]blockSpec `yaml:"cells"`
}
