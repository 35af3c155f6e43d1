package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*.css templates/*.html content/*.yaml
var embedded embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS style from embedded assets by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	content, err := e.read(styleKind, name)
	return string(content), err
}

// LoadTemplate loads an HTML page template from embedded assets by name.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	content, err := e.read(templateKind, name)
	return string(content), err
}

// LoadContent loads a YAML content file from embedded assets by name.
func (e *EmbeddedLoader) LoadContent(name string) ([]byte, error) {
	return e.read(contentKind, name)
}

func (e *EmbeddedLoader) read(k kind, name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	content, err := embedded.ReadFile(k.file(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", k.notFound, name)
	}
	return content, nil
}

// EmbeddedStyles lists the built-in style names, sorted.
func EmbeddedStyles() []string {
	entries, err := fs.ReadDir(embedded, styleKind.dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), styleKind.ext))
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
