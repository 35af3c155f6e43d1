// Package yamlutil is the single entry point to the YAML library, used for
// configuration and content files.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
)

// MaxInputSize bounds the accepted document size in bytes.
var MaxInputSize = 1 << 20

var (
	ErrNotScalar      = errors.New("yamlutil: not a scalar")
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Unmarshal decodes data into v, ignoring unknown keys.
func Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

// UnmarshalStrict decodes data into v and rejects unknown keys.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.DisallowUnknownField())
}

func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	switch {
	case len(data) == 0:
		return ErrNilData
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Describe renders a decoding error with the offending source lines when
// the parser recorded a position, and falls back to err.Error().
func Describe(err error) string {
	if err == nil {
		return ""
	}
	return yaml.FormatError(err, false, true)
}

// Scalar holds a scalar value exactly as written in the source: 1.50
// stays "1.50" and 0x1F stays "0x1F". Quoted and block strings are
// unquoted; null is empty.
type Scalar string

// UnmarshalYAML implements yaml.NodeUnmarshaler.
func (s *Scalar) UnmarshalYAML(node ast.Node) error {
	switch n := node.(type) {
	case *ast.StringNode:
		*s = Scalar(n.Value)
	case *ast.LiteralNode:
		*s = Scalar(n.Value.Value)
	case *ast.NullNode:
		*s = ""
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.InfinityNode, *ast.NanNode:
		*s = Scalar(n.GetToken().Value)
	case *ast.TagNode:
		return s.UnmarshalYAML(n.Value)
	case *ast.AnchorNode:
		return s.UnmarshalYAML(n.Value)
	default:
		return fmt.Errorf("%w: got %s", ErrNotScalar, node.Type())
	}
	return nil
}

// Strings converts scalars to plain strings.
func Strings(values []Scalar) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
