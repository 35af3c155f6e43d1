package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"
)

// ErrMarkdown indicates goldmark rejected the notes source.
var ErrMarkdown = errors.New("rendering markdown")

// MarkdownRenderer turns markdown notes into an HTML fragment. Heading ids
// are taken from ids, so fragments rendered against the same set never
// repeat an anchor. A nil ids uses a fresh set.
type MarkdownRenderer interface {
	RenderMarkdown(ctx context.Context, source string, ids parser.IDs) (string, error)
}

// NewHeadingIDs returns an empty anchor set for one page.
func NewHeadingIDs() parser.IDs {
	return parser.NewContext().IDs()
}

// HeadingID claims an anchor for heading markup the same way goldmark does
// for markdown headings. Tags are dropped and entities decoded first.
func HeadingID(ids parser.IDs, markup string) string {
	var text strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		if tt == xhtml.TextToken {
			text.Write(z.Text())
		}
	}
	return string(ids.Generate([]byte(text.String()), ast.KindHeading))
}

// Goldmark renders notes with GFM tables, definition lists for glossary
// entries, footnotes, and class-based code highlighting. Raw HTML passes
// through: notes are authored locally.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark returns the markdown renderer used for rich text blocks.
func NewGoldmark() *Goldmark {
	return &Goldmark{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.DefinitionList,
			extension.Footnote,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// RenderMarkdown converts source to a fragment without document wrapper.
// Each call parses with its own context; only ids is shared.
func (g *Goldmark) RenderMarkdown(ctx context.Context, source string, ids parser.IDs) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ids == nil {
		ids = NewHeadingIDs()
	}
	pc := parser.NewContext(parser.WithIDs(ids))

	var buf bytes.Buffer
	buf.Grow(len(source) + len(source)/2)
	if err := g.md.Convert([]byte(source), &buf, parser.WithContext(pc)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMarkdown, err)
	}
	return buf.String(), nil
}
