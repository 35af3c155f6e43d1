package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// ==marked== text is swapped for private-use runes before goldmark runs and
// turned into <mark> afterwards, so the marker never collides with
// emphasis parsing.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

const byteOrderMark = "\uFEFF"

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==([^=\n]+?)==`)
)

// MarkdownPreprocessor prepares markdown source before conversion.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// NotesPreprocessor normalizes authored markdown notes.
type NotesPreprocessor struct{}

// PreprocessMarkdown strips a leading BOM, normalizes line endings,
// marks ==highlights== and collapses runs of blank lines.
// Returns content unchanged when ctx is already done.
func (p *NotesPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	content = strings.TrimPrefix(content, byteOrderMark)
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// ConvertMarkPlaceholders turns highlight placeholders into <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return markReplacer.Replace(content)
}

var markReplacer = strings.NewReplacer(
	MarkStartPlaceholder, "<mark>",
	MarkEndPlaceholder, "</mark>",
)
