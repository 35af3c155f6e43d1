package assets

// Built-in asset names.
const (
	DefaultStyleName    = "light"
	DefaultTemplateName = "page"
	DefaultContentName  = "economics"
)

// AssetLoader loads the three kinds of assets a page is made of.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML page template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)

	// LoadContent loads a YAML content file by name (without .yaml extension).
	// Returns ErrContentNotFound if the file doesn't exist.
	LoadContent(name string) ([]byte, error)
}

// kind describes where one asset family lives and how it is reported missing.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
	contentKind  = kind{dir: "content", ext: ".yaml", notFound: ErrContentNotFound}
)

func (k kind) file(name string) string {
	return k.dir + "/" + name + k.ext
}
