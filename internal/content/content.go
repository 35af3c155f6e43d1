// Package content loads the blocks of a notes page from a YAML content
// file and inlines the lecture-note markup in place of its notes
// placeholder.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/alnah/go-econnotes"
	"github.com/alnah/go-econnotes/internal/assets"
	"github.com/alnah/go-econnotes/internal/fileutil"
	"github.com/alnah/go-econnotes/internal/pipeline"
	"github.com/alnah/go-econnotes/internal/yamlutil"
)

// Sentinel errors for content loading.
var (
	// ErrNotesNotFound indicates the lecture-note markup is missing while
	// the content file asks for it.
	ErrNotesNotFound = errors.New("lecture notes not found")

	// ErrInvalidContent indicates a content file that does not decode into
	// valid blocks.
	ErrInvalidContent = errors.New("invalid content file")
)

// MaxNotesSize bounds the lecture-note file read into memory.
const MaxNotesSize = 8 << 20

const byteOrderMark = "\uFEFF"

// Source locates the content file and the lecture notes.
type Source struct {
	// ContentPath is a YAML file on disk. When empty, ContentName is
	// looked up through Loader.
	ContentPath string
	ContentName string             // default assets.DefaultContentName
	Loader      assets.AssetLoader // default embedded assets

	// NotesPath is the lecture-note markup. Required when the content file
	// holds a notes placeholder.
	NotesPath string
}

// Load reads and decodes the content file, inlining the notes.
func (s Source) Load() (*Page, error) {
	data, err := s.readContent()
	if err != nil {
		return nil, err
	}

	needs, err := NeedsNotes(data)
	if err != nil {
		return nil, err
	}

	var notes *econnotes.RichText
	if needs {
		if s.NotesPath == "" {
			return nil, fmt.Errorf("%w: no notes file configured", ErrNotesNotFound)
		}
		notes, err = ReadNotes(s.NotesPath)
		if err != nil {
			return nil, err
		}
	}

	page, err := Parse(data, notes)
	if err != nil {
		return nil, err
	}
	if needs {
		dir, err := filepath.Abs(filepath.Dir(s.NotesPath))
		if err != nil {
			return nil, err
		}
		page.NotesDir = dir
	}
	return page, nil
}

func (s Source) readContent() ([]byte, error) {
	if s.ContentPath != "" {
		data, err := fileutil.ReadLimited(s.ContentPath, int64(yamlutil.MaxInputSize))
		if err != nil {
			return nil, fmt.Errorf("reading content file: %w", err)
		}
		return data, nil
	}

	loader := s.Loader
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	name := s.ContentName
	if name == "" {
		name = assets.DefaultContentName
	}
	data, err := loader.LoadContent(name)
	if err != nil {
		return nil, fmt.Errorf("loading content %q: %w", name, err)
	}
	return data, nil
}

// ReadNotes reads the lecture-note markup at path. Files ending in .md or
// .markdown are markdown; anything else is HTML. A full HTML document is
// reduced to its styles and body so it nests inside the page.
func ReadNotes(path string) (*econnotes.RichText, error) {
	data, err := fileutil.ReadLimited(path, MaxNotesSize)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotesNotFound, path)
		}
		return nil, fmt.Errorf("reading notes: %w", err)
	}
	source := strings.TrimPrefix(string(data), byteOrderMark)

	if NotesFormat(path) == econnotes.FormatMarkdown {
		return econnotes.Markdown(source), nil
	}
	body, err := pipeline.EmbeddableHTML(source)
	if err != nil {
		return nil, fmt.Errorf("parsing notes %s: %w", path, err)
	}
	return econnotes.HTML(body), nil
}

// NotesFormat returns the rich text format implied by the file extension.
func NotesFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return econnotes.FormatMarkdown
	default:
		return econnotes.FormatHTML
	}
}
