package pipeline

import (
	"context"
	"strings"
)

// CSSInjector adds a stylesheet to an HTML document.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as one <style> element.
type CSSInjection struct{}

// InjectCSS places a <style> element at the end of <head>, else right after
// the opening <body> tag, else in front of the content. Empty CSS or a done
// context leaves htmlContent unchanged.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if strings.TrimSpace(cssContent) == "" || ctx.Err() != nil {
		return htmlContent
	}

	style := "<style>" + sanitizeCSS(cssContent) + "</style>"

	if idx := indexFold(htmlContent, "</head>"); idx != -1 {
		return htmlContent[:idx] + style + htmlContent[idx:]
	}
	if pos := afterOpenTag(htmlContent, "<body"); pos != -1 {
		return htmlContent[:pos] + style + htmlContent[pos:]
	}
	return style + htmlContent
}

// sanitizeCSS keeps stylesheet text from closing its <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// afterOpenTag returns the index just past the first opening tag with the
// given prefix (e.g. "<body"), or -1.
func afterOpenTag(content, prefix string) int {
	idx := indexFold(content, prefix)
	if idx == -1 {
		return -1
	}
	end := strings.IndexByte(content[idx:], '>')
	if end == -1 {
		return -1
	}
	return idx + end + 1
}

// indexFold is strings.Index ignoring case, returning an offset into s.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
