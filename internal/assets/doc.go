// Package assets provides the page themes, page templates, and content
// files used to build a notes page.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in assets compiled in with go:embed
//	    ├── FilesystemLoader  - assets from a directory on disk
//	    └── AssetResolver     - filesystem first, embedded as fallback
//
// The resolver only falls back when an asset is missing. Invalid names and
// read errors are returned as is.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	├── templates/
//	│   └── {name}.html
//	└── content/
//	    └── {name}.yaml
//
// # Security
//
// Asset names may not contain separators or dots. FilesystemLoader opens
// files through os.Root, which refuses any path or symlink leaving basePath.
package assets
