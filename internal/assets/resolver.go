package assets

import (
	"errors"
)

// AssetResolver combines custom and embedded loaders. With a custom loader
// configured it is tried first and the embedded assets serve whatever it
// does not have.
type AssetResolver struct {
	custom   *FilesystemLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath means
// embedded assets only. Returns an error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadStyle loads a CSS style, custom first.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	content, err := r.loadWithFallback(func(l AssetLoader) ([]byte, error) {
		s, err := l.LoadStyle(name)
		return []byte(s), err
	})
	return string(content), err
}

// LoadTemplate loads a page template, custom first.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	content, err := r.loadWithFallback(func(l AssetLoader) ([]byte, error) {
		s, err := l.LoadTemplate(name)
		return []byte(s), err
	})
	return string(content), err
}

// LoadContent loads a content file, custom first.
func (r *AssetResolver) LoadContent(name string) ([]byte, error) {
	return r.loadWithFallback(func(l AssetLoader) ([]byte, error) {
		return l.LoadContent(name)
	})
}

func (r *AssetResolver) loadWithFallback(load func(AssetLoader) ([]byte, error)) ([]byte, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	content, err := load(r.custom)
	if err == nil {
		return content, nil
	}

	// Validation and I/O errors are not hidden by the embedded assets.
	if !isNotFoundError(err) {
		return nil, err
	}
	return load(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrContentNotFound)
}

// HasCustomLoader returns true if a custom asset directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// CustomDir returns the custom asset directory, or "" when there is none.
func (r *AssetResolver) CustomDir() string {
	if r.custom == nil {
		return ""
	}
	return r.custom.BasePath()
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
