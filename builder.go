package econnotes

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/alnah/go-econnotes/internal/fileutil"
	"github.com/alnah/go-econnotes/internal/pipeline"
)

var _ pipeline.CSSInjector = (*pipeline.CSSInjection)(nil)

// Table of contents depth defaults. Section headings on a notes page are
// h2 and h3.
const (
	DefaultTOCMinDepth = 2
	DefaultTOCMaxDepth = 3
)

// Input describes one page to build.
type Input struct {
	Title    string
	Subtitle string
	Date     string // shown as is under the title
	Blocks   []Block

	// CSS is appended after the theme so it can override it.
	CSS string

	// TOC adds a numbered table of contents above the blocks when set.
	TOC *TOC

	// SourceDir resolves relative image and link references. They become
	// file:// URLs, or AssetPrefix URLs when AssetPrefix is set.
	SourceDir   string
	AssetPrefix string
}

// TOC configures the table of contents.
type TOC struct {
	Title    string
	MinDepth int // 0 means DefaultTOCMinDepth
	MaxDepth int // 0 means DefaultTOCMaxDepth
}

// Validate checks the depth range. A nil TOC is valid.
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	minDepth, maxDepth := t.depths()
	if minDepth < 1 || minDepth > 6 {
		return fmt.Errorf("%w: min depth %d (must be 1-6)", ErrInvalidTOCDepth, minDepth)
	}
	if maxDepth < 1 || maxDepth > 6 {
		return fmt.Errorf("%w: max depth %d (must be 1-6)", ErrInvalidTOCDepth, maxDepth)
	}
	if minDepth > maxDepth {
		return fmt.Errorf("%w: min depth %d exceeds max depth %d", ErrInvalidTOCDepth, minDepth, maxDepth)
	}
	return nil
}

func (t *TOC) depths() (int, int) {
	minDepth, maxDepth := t.MinDepth, t.MaxDepth
	if minDepth == 0 {
		minDepth = DefaultTOCMinDepth
	}
	if maxDepth == 0 {
		maxDepth = DefaultTOCMaxDepth
	}
	return minDepth, maxDepth
}

// Page is a built standalone HTML5 document.
type Page struct {
	HTML     []byte
	Document *Document
}

// Builder wraps assembled blocks into a themed standalone page.
// Create with NewBuilder. A Builder is safe for concurrent use.
type Builder struct {
	cfg         builderConfig
	loader      AssetLoader
	assembler   *Assembler
	layout      *template.Template
	cssInjector pipeline.CSSInjector
}

// layoutView is the data handed to the page template.
type layoutView struct {
	Title    string
	Subtitle string
	Date     string
	TOC      template.HTML
	Body     template.HTML
}

// NewBuilder creates a Builder using the light theme and the embedded page
// template unless options say otherwise. Returns an error when the style
// or the page template cannot be loaded or parsed.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg: builderConfig{
			styleInput: DefaultStyle,
			layoutName: DefaultLayout,
		},
		cssInjector: &pipeline.CSSInjection{},
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.loader == nil {
		loader, err := NewAssetLoader(b.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		b.loader = loader
	}
	if b.assembler == nil {
		b.assembler = NewAssembler()
	}

	if err := b.resolveStyle(); err != nil {
		return nil, err
	}

	src, err := b.loader.LoadTemplate(b.cfg.layoutName)
	if err != nil {
		return nil, fmt.Errorf("loading page template %q: %w", b.cfg.layoutName, err)
	}
	b.layout, err = template.New(b.cfg.layoutName).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrPageLayout, b.cfg.layoutName, err)
	}
	return b, nil
}

// Style returns the resolved theme CSS.
func (b *Builder) Style() string {
	return b.cfg.resolvedStyle
}

// Build assembles input.Blocks and lays them out as a full page. When a
// block fails the error is an *AssemblyError and the returned page holds
// only the partial Document, without HTML.
// Recovers from internal panics so they never reach the caller.
func (b *Builder) Build(ctx context.Context, input Input) (page *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			page = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	doc, err := b.assembler.Assemble(ctx, input.Blocks)
	if err != nil {
		return &Page{Document: doc}, err
	}

	body, err := rewritePaths(doc.HTML(), input)
	if err != nil {
		return nil, fmt.Errorf("rewriting relative paths: %w", err)
	}

	var toc string
	if input.TOC != nil {
		minDepth, maxDepth := input.TOC.depths()
		toc, err = pipeline.BuildTOC(ctx, body, &pipeline.TOCData{
			Title:    input.TOC.Title,
			MinDepth: minDepth,
			MaxDepth: maxDepth,
		})
		if err != nil {
			return nil, fmt.Errorf("building table of contents: %w", err)
		}
	}

	var buf bytes.Buffer
	err = b.layout.Execute(&buf, layoutView{
		Title:    input.Title,
		Subtitle: input.Subtitle,
		Date:     input.Date,
		TOC:      template.HTML(toc),  // #nosec G203 -- generated from escaped headings
		Body:     template.HTML(body), // #nosec G203 -- assembled from trusted blocks
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLayout, err)
	}

	// Theme first so the page CSS can override it.
	css := b.cfg.resolvedStyle
	if input.CSS != "" {
		css += "\n" + input.CSS
	}
	out := b.cssInjector.InjectCSS(ctx, buf.String(), css)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Page{HTML: []byte(out), Document: doc}, nil
}

func rewritePaths(body string, input Input) (string, error) {
	if input.SourceDir == "" {
		return body, nil
	}
	var (
		mapper pipeline.PathMapper
		err    error
	)
	if input.AssetPrefix != "" {
		mapper, err = pipeline.NewPrefixMapper(input.SourceDir, input.AssetPrefix)
	} else {
		mapper, err = pipeline.NewFileURLMapper(input.SourceDir)
	}
	if err != nil {
		return "", err
	}
	return pipeline.RewriteRelativePaths(body, mapper)
}

// resolveStyle turns the style input (name, path, or CSS content) into CSS.
func (b *Builder) resolveStyle() error {
	input := strings.TrimSpace(b.cfg.styleInput)
	switch {
	case input == "":
		return nil

	case fileutil.IsCSS(input):
		b.cfg.resolvedStyle = input
		return nil

	case fileutil.IsFilePath(input):
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		b.cfg.resolvedStyle = string(content)
		return nil
	}

	css, err := b.loader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	b.cfg.resolvedStyle = css
	return nil
}

// validateInput is the trust boundary for callers building Input by hand.
// Blocks themselves are validated during assembly.
func validateInput(input Input) error {
	if err := input.TOC.Validate(); err != nil {
		return err
	}
	if input.AssetPrefix != "" && !strings.HasPrefix(input.AssetPrefix, "/") {
		return fmt.Errorf("%w: asset prefix %q must start with /", ErrInvalidAssetPath, input.AssetPrefix)
	}
	return nil
}
