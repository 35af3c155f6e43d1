package assets

import "errors"

// Missing assets. AssetResolver falls back to the embedded set on these.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrContentNotFound  = errors.New("content not found")
)

// Errors that are never hidden by the embedded fallback.
var (
	// ErrInvalidAssetName rejects empty names and names with separators or dots.
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid asset directory")
	ErrAssetRead        = errors.New("reading asset")
	// ErrPathTraversal reports a name or symlink resolving outside the
	// asset directory.
	ErrPathTraversal = errors.New("asset path escapes its directory")
)
