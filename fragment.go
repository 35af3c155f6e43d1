package econnotes

import "strings"

// Fragment is the rendered output of one top-level block.
type Fragment struct {
	Index int
	Kind  BlockKind
	HTML  string
	// Artifacts holds the images drawn for this block, in order. A chart or
	// diagram yields one; a Columns block may yield several.
	Artifacts []*Artifact
	// Headings lists the headings emitted by this block with their final
	// anchor IDs.
	Headings []Heading
}

// Document is an assembled page body: one fragment per block, in input
// order.
type Document struct {
	Fragments []Fragment
}

// Len returns the number of fragments.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Fragments)
}

// HTML concatenates the fragments, one per line.
func (d *Document) HTML() string {
	if d.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for _, f := range d.Fragments {
		sb.WriteString(f.HTML)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Headings returns every heading of the document in order.
func (d *Document) Headings() []Heading {
	if d == nil {
		return nil
	}
	var out []Heading
	for _, f := range d.Fragments {
		out = append(out, f.Headings...)
	}
	return out
}

// Artifacts returns every rendered figure of the document in order.
func (d *Document) Artifacts() []*Artifact {
	if d == nil {
		return nil
	}
	var out []*Artifact
	for _, f := range d.Fragments {
		out = append(out, f.Artifacts...)
	}
	return out
}
