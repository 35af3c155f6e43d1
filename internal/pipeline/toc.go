package pipeline

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TOCData configures table of contents generation.
type TOCData struct {
	Title    string
	MinDepth int // Shallowest heading level listed
	MaxDepth int // Deepest heading level listed
}

// Heading is a heading found in an HTML document.
type Heading struct {
	Level int
	ID    string
	Text  string
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3,
	atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// ExtractHeadings returns, in document order, every heading with an id
// attribute whose level lies within [minDepth, maxDepth]. Text is the
// heading's visible text with whitespace collapsed.
func ExtractHeadings(htmlContent string, minDepth, maxDepth int) ([]Heading, error) {
	z := html.NewTokenizer(strings.NewReader(htmlContent))

	var (
		found   []Heading
		current *Heading
		text    strings.Builder
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return found, nil

		case html.StartTagToken:
			if current != nil {
				continue
			}
			tok := z.Token()
			level, ok := headingLevels[tok.DataAtom]
			if !ok || level < minDepth || level > maxDepth {
				continue
			}
			id := attr(tok, "id")
			if id == "" {
				continue
			}
			current = &Heading{Level: level, ID: id}
			text.Reset()

		case html.TextToken:
			if current != nil {
				text.Write(z.Text())
			}

		case html.EndTagToken:
			if current == nil {
				continue
			}
			name, _ := z.TagName()
			if headingLevels[atom.Lookup(name)] != current.Level {
				continue
			}
			current.Text = strings.Join(strings.Fields(text.String()), " ")
			found = append(found, *current)
			current = nil
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// numberingState tracks hierarchical section numbers. The shallowest level
// seen first becomes depth 1, and skipped levels collapse so an h2 followed
// by an h4 still reads 1 then 1.1.
type numberingState struct {
	counters [6]int
	base     int // level mapped to depth 1 (0 = unset)
	last     int // depth of the previous entry
}

// next returns the section number ("1.2") and effective depth for level.
func (n *numberingState) next(level int) (string, int) {
	if n.base == 0 {
		n.base = level
	}
	depth := max(level-n.base+1, 1)
	if n.last > 0 && depth > n.last+1 {
		depth = n.last + 1
	}

	n.counters[depth-1]++
	for i := depth; i < len(n.counters); i++ {
		n.counters[i] = 0
	}
	n.last = depth

	parts := make([]string, depth)
	for i := range parts {
		parts[i] = strconv.Itoa(n.counters[i])
	}
	return strings.Join(parts, "."), depth
}

// BuildTOC renders a numbered table of contents for the headings of
// htmlContent. It returns "" when data is nil or no heading qualifies.
func BuildTOC(ctx context.Context, htmlContent string, data *TOCData) (string, error) {
	if data == nil {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	headings, err := ExtractHeadings(htmlContent, data.MinDepth, data.MaxDepth)
	if err != nil {
		return "", err
	}
	return renderTOC(headings, data.Title), nil
}

func renderTOC(headings []Heading, title string) string {
	if len(headings) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<nav class="toc">`)
	if title != "" {
		sb.WriteString(`<h2 class="toc-title">`)
		sb.WriteString(html.EscapeString(title))
		sb.WriteString(`</h2>`)
	}
	sb.WriteString(`<ol class="toc-list">`)

	var numbering numberingState
	for _, h := range headings {
		num, depth := numbering.next(h.Level)
		sb.WriteString(`<li class="toc-item toc-depth-`)
		sb.WriteString(strconv.Itoa(depth))
		sb.WriteString(`"><a href="#`)
		sb.WriteString(html.EscapeString(h.ID))
		sb.WriteString(`"><span class="toc-number">`)
		sb.WriteString(num)
		sb.WriteString(`</span> `)
		sb.WriteString(html.EscapeString(h.Text))
		sb.WriteString(`</a></li>`)
	}

	sb.WriteString(`</ol></nav>`)
	return sb.String()
}
