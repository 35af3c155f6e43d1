package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EmbeddableHTML reduces markup to something that can be nested inside
// another page's <body>. Fragments are returned untouched. For a full
// document the <style> and stylesheet <link> elements of <head> are kept,
// followed by the children of <body>.
func EmbeddableHTML(markup string) (string, error) {
	if !isFullDocument(markup) {
		return markup, nil
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if head := findElement(doc, atom.Head); head != nil {
		for c := head.FirstChild; c != nil; c = c.NextSibling {
			if !isStyleNode(c) {
				continue
			}
			if err := html.Render(&sb, c); err != nil {
				return "", err
			}
		}
	}
	if body := findElement(doc, atom.Body); body != nil {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&sb, c); err != nil {
				return "", err
			}
		}
	}
	return sb.String(), nil
}

func isStyleNode(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Style:
		return true
	case atom.Link:
		for _, a := range n.Attr {
			if a.Key == "rel" && strings.EqualFold(a.Val, "stylesheet") {
				return true
			}
		}
	}
	return false
}

// findElement returns the first element of type a in depth-first order.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
