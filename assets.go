package econnotes

import (
	"errors"

	"github.com/alnah/go-econnotes/internal/assets"
)

// AssetLoader loads page themes and page templates. Implementations may
// read from the filesystem, embedded files, or anywhere else.
//
// NewAssetLoader returns the filesystem-backed loader that falls back to the
// embedded defaults.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style does not exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML page template by name (without .html
	// extension). Returns ErrTemplateNotFound if it does not exist.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader rooted at basePath. With an empty
// basePath only embedded assets are available; otherwise files found under
// basePath/styles and basePath/templates win over the embedded ones.
//
// Returns ErrInvalidAssetPath if basePath is set but not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err, ErrInvalidAssetPath)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter maps internal asset errors onto the public sentinels.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	css, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err, ErrStyleNotFound)
	}
	return css, nil
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	tmpl, err := a.resolver.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err, ErrTemplateNotFound)
	}
	return tmpl, nil
}

// convertAssetError maps internal asset errors to public ones. An invalid
// name reads as notFound.
func convertAssetError(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrInvalidAssetName):
		return &assetError{sentinel: notFound, original: err}
	case errors.Is(err, assets.ErrStyleNotFound):
		return &assetError{sentinel: ErrStyleNotFound, original: err}
	case errors.Is(err, assets.ErrTemplateNotFound):
		return &assetError{sentinel: ErrTemplateNotFound, original: err}
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return &assetError{sentinel: ErrInvalidAssetPath, original: err}
	default:
		return err
	}
}

// assetError keeps the internal message while matching a public sentinel.
type assetError struct {
	sentinel error
	original error
}

func (e *assetError) Error() string { return e.original.Error() }

func (e *assetError) Unwrap() error { return e.sentinel }
