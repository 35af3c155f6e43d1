package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// maxAssetSize bounds a single style, template or content file.
const maxAssetSize = 4 << 20

// FilesystemLoader reads assets from a directory laid out like the embedded
// set: styles/, templates/ and content/. Reads go through os.Root, so a
// name or symlink can never resolve outside the directory.
type FilesystemLoader struct {
	dir string
}

// NewFilesystemLoader checks that dir is a readable directory.
// Failures match ErrInvalidBasePath.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBasePath, err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBasePath, abs, err)
	}
	defer root.Close()
	if _, err := fs.ReadDir(root.FS(), "."); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBasePath, abs, err)
	}
	return &FilesystemLoader{dir: abs}, nil
}

// BasePath returns the absolute asset directory.
func (f *FilesystemLoader) BasePath() string { return f.dir }

// LoadStyle reads styles/{name}.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	b, err := f.read(styleKind, name)
	return string(b), err
}

// LoadTemplate reads templates/{name}.html.
func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	b, err := f.read(templateKind, name)
	return string(b), err
}

// LoadContent reads content/{name}.yaml.
func (f *FilesystemLoader) LoadContent(name string) ([]byte, error) {
	return f.read(contentKind, name)
}

func (f *FilesystemLoader) read(k kind, name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	file, err := os.OpenInRoot(f.dir, filepath.FromSlash(k.file(name)))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %q", k.notFound, name)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %w", ErrAssetRead, err)
	case err != nil:
		// os.Root rejects names and symlinks resolving outside the directory.
		return nil, fmt.Errorf("%w: %s: %w", ErrPathTraversal, k.file(name), err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetRead, err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrAssetRead, k.file(name), maxAssetSize)
	}
	return data, nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
