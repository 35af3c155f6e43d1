// Package pipeline holds the HTML stages used to build a notes page:
//   - markdown preprocessing and conversion via goldmark
//   - reduction of full HTML documents to embeddable markup
//   - numbered table of contents generation
//   - stylesheet injection
//   - relative resource path rewriting
//
// Figures are rendered by the root econnotes package; this package only
// handles markup.
package pipeline
