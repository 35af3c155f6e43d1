package econnotes

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// ErrInvalidBlock matches every *ValidationError via errors.Is.
	ErrInvalidBlock = errors.New("invalid content block")
	// ErrRender matches every *RenderError via errors.Is.
	ErrRender = errors.New("rendering failed")
	// ErrAssembly matches every *AssemblyError via errors.Is.
	ErrAssembly = errors.New("page assembly failed")

	ErrUnknownBlock = errors.New("unknown block type")
	ErrPageLayout   = errors.New("page layout rendering failed")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// TOC validation errors.
	ErrInvalidTOCDepth = errors.New("invalid TOC depth")
)

// ValidationError reports a structurally invalid content block.
// Block names the block (kind and title when it has one), Field the
// offending field.
type ValidationError struct {
	Block  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Block, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s: %s", e.Block, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidBlock) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidBlock
}

// RenderError reports that a renderer could not produce an artifact for
// otherwise valid input.
type RenderError struct {
	Kind  BlockKind
	Title string
	Err   error
}

func (e *RenderError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("rendering %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("rendering %s %q: %v", e.Kind, e.Title, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRender) succeed.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// AssemblyError wraps a block failure with its position in the page.
type AssemblyError struct {
	Index int
	Kind  BlockKind
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("block %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrAssembly) succeed.
func (e *AssemblyError) Is(target error) bool {
	return target == ErrAssembly
}

// invalid builds a ValidationError for the given block.
func invalid(block, field, format string, args ...any) *ValidationError {
	return &ValidationError{Block: block, Field: field, Reason: fmt.Sprintf(format, args...)}
}
