package econnotes

import "github.com/alnah/go-econnotes/internal/assets"

// Option configures a Builder.
type Option func(*Builder)

// builderConfig holds the option values resolved by NewBuilder.
type builderConfig struct {
	styleInput    string // name, file path, or CSS content
	resolvedStyle string
	assetPath     string
	layoutName    string
}

// Built-in asset names.
const (
	// DefaultStyle is the light theme applied when no style is chosen.
	DefaultStyle = assets.DefaultStyleName

	// DefaultLayout is the page template wrapping the assembled blocks.
	DefaultLayout = assets.DefaultTemplateName
)

// WithStyle sets the page theme. The value is a built-in or custom style
// name ("light", "default"), a path to a CSS file, or raw CSS content.
func WithStyle(style string) Option {
	return func(b *Builder) {
		b.cfg.styleInput = style
	}
}

// WithAssetPath adds a directory of custom styles and templates that take
// precedence over the embedded ones.
func WithAssetPath(dir string) Option {
	return func(b *Builder) {
		b.cfg.assetPath = dir
	}
}

// WithAssetLoader replaces asset loading entirely. It wins over
// WithAssetPath.
func WithAssetLoader(l AssetLoader) Option {
	return func(b *Builder) {
		b.loader = l
	}
}

// WithLayout selects the page template by name.
func WithLayout(name string) Option {
	return func(b *Builder) {
		b.cfg.layoutName = name
	}
}

// WithAssembler replaces the block assembler, mainly to swap renderers.
func WithAssembler(a *Assembler) Option {
	return func(b *Builder) {
		if a != nil {
			b.assembler = a
		}
	}
}
