package pipeline

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PathMapper maps a relative reference found in the page to the value the
// browser should load. ok is false when the reference must stay as is.
type PathMapper interface {
	MapPath(rel string) (mapped string, ok bool)
}

// FileURLMapper resolves references against Dir and emits file:// URLs.
// Used when the page is written to disk away from the notes.
type FileURLMapper struct {
	Dir string // absolute
}

// NewFileURLMapper returns a FileURLMapper rooted at dir.
func NewFileURLMapper(dir string) (*FileURLMapper, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &FileURLMapper{Dir: abs}, nil
}

// MapPath implements PathMapper.
func (m *FileURLMapper) MapPath(rel string) (string, bool) {
	target, ok := resolveUnder(m.Dir, rel)
	if !ok {
		return "", false
	}
	return pathToFileURL(target), true
}

// PrefixMapper serves references from under Dir through an URL prefix such
// as "/assets/". Used by the HTTP server.
type PrefixMapper struct {
	Dir    string // absolute
	Prefix string
}

// NewPrefixMapper returns a PrefixMapper rooted at dir.
func NewPrefixMapper(dir, prefix string) (*PrefixMapper, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &PrefixMapper{Dir: abs, Prefix: prefix}, nil
}

// MapPath implements PathMapper.
func (m *PrefixMapper) MapPath(rel string) (string, bool) {
	target, ok := resolveUnder(m.Dir, rel)
	if !ok {
		return "", false
	}
	inside, err := filepath.Rel(m.Dir, target)
	if err != nil {
		return "", false
	}
	u := url.URL{Path: path.Join(m.Prefix, filepath.ToSlash(inside))}
	return u.EscapedPath(), true
}

// resolveUnder joins rel onto dir, refusing anything that escapes dir.
func resolveUnder(dir, rel string) (string, bool) {
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if !isPathUnderDir(target, dir) {
		return "", false
	}
	return target, true
}

// rewritable lists, per element, the attributes holding a resource
// reference.
var rewritable = map[atom.Atom][]string{
	atom.Img:    {"src"},
	atom.A:      {"href"},
	atom.Source: {"src"},
	atom.Video:  {"src", "poster"},
	atom.Audio:  {"src"},
	atom.Link:   {"href"},
}

// RewriteRelativePaths passes every relative reference (img, a, media and
// link elements) through m. A nil mapper returns the HTML unchanged.
// Full documents and fragments are both accepted and rendered back in the
// same shape.
func RewriteRelativePaths(htmlContent string, m PathMapper) (string, error) {
	if m == nil {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	rewriteNode(doc, m)
	return renderHTML(doc, isFragment)
}

// parseHTML parses a full document (leading doctype or <html>) or a body
// fragment. Fragments are gathered under a synthetic document node.
func parseHTML(content string) (*html.Node, bool, error) {
	if isFullDocument(content) {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

func isFullDocument(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var sb strings.Builder
	if !isFragment {
		if err := html.Render(&sb, doc); err != nil {
			return "", err
		}
		return sb.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func rewriteNode(n *html.Node, m PathMapper) {
	if n.Type == html.ElementNode {
		for _, key := range rewritable[n.DataAtom] {
			for i, a := range n.Attr {
				if a.Namespace != "" || a.Key != key || !isRelativePath(a.Val) {
					continue
				}
				if mapped, ok := m.MapPath(a.Val); ok {
					n.Attr[i].Val = mapped
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, m)
	}
}

// isRelativePath reports whether ref is a relative file reference:
// not empty, not an anchor, not absolute and without a URL scheme.
func isRelativePath(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if filepath.IsAbs(ref) || strings.HasPrefix(ref, "/") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// isPathUnderDir reports whether absPath is dir itself or inside it.
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)
	if cleanPath == cleanDir {
		return true
	}
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath, cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letters
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
