package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-econnotes"
	"github.com/alnah/go-econnotes/internal/assets"
	"github.com/alnah/go-econnotes/internal/config"
	"github.com/alnah/go-econnotes/internal/content"
	"github.com/alnah/go-econnotes/internal/dateutil"
	"github.com/alnah/go-econnotes/internal/fileutil"
	"github.com/alnah/go-econnotes/internal/hints"
)

// ErrReadCSS indicates the extra page CSS file could not be read.
var ErrReadCSS = errors.New("reading page CSS")

// maxCSSSize bounds the extra page CSS file.
const maxCSSSize = 1 << 20

// loadConfig resolves the config file (flag, then ECONNOTES_CONFIG), then
// layers the environment on top. Flags are merged by the caller.
func loadConfig(flagValue string, env *envConfig) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}

// pageJob renders the notes page from a resolved configuration.
type pageJob struct {
	cfg     *config.Config
	noTOC   bool
	builder *econnotes.Builder
	source  content.Source
	now     func() time.Time
	log     *zap.Logger
}

// newPageJob validates cfg and prepares the builder and content source.
func newPageJob(cfg *config.Config, o *pageOptions, env *Environment, log *zap.Logger) (*pageJob, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []econnotes.Option
	if cfg.Assets.BasePath != "" {
		opts = append(opts, econnotes.WithAssetPath(cfg.Assets.BasePath))
	}
	switch {
	case o.assets.noStyle:
		opts = append(opts, econnotes.WithStyle(""))
	case cfg.CSS.Style != "":
		opts = append(opts, econnotes.WithStyle(cfg.CSS.Style))
	}

	builder, err := econnotes.NewBuilder(opts...)
	if err != nil {
		if errors.Is(err, econnotes.ErrStyleNotFound) {
			return nil, fmt.Errorf("%w%s", err, hints.ForStyleNotFound(assets.EmbeddedStyles()))
		}
		return nil, err
	}

	source := content.Source{
		ContentPath: cfg.Content.Path,
		ContentName: cfg.Content.Name,
		NotesPath:   cfg.Content.Notes,
	}
	if cfg.Assets.BasePath != "" {
		resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", econnotes.ErrInvalidAssetPath, err)
		}
		source.Loader = resolver
	}

	return &pageJob{
		cfg:     cfg,
		noTOC:   o.toc.disabled,
		builder: builder,
		source:  source,
		now:     env.Now,
		log:     log,
	}, nil
}

// render loads the content and builds the page. assetPrefix is passed to
// Input.AssetPrefix; empty means file:// URLs.
func (j *pageJob) render(ctx context.Context, assetPrefix string) (*econnotes.Page, error) {
	start := j.now()

	p, err := j.source.Load()
	if err != nil {
		switch {
		case errors.Is(err, content.ErrNotesNotFound):
			return nil, fmt.Errorf("%w%s", err, hints.ForNotesNotFound())
		case errors.Is(err, content.ErrInvalidContent):
			return nil, fmt.Errorf("%w%s", err, hints.ForInvalidContent())
		}
		return nil, err
	}

	input, err := j.input(p, assetPrefix)
	if err != nil {
		return nil, err
	}
	j.log.Debug("content loaded",
		zap.Int("blocks", len(input.Blocks)),
		zap.String("notes_dir", input.SourceDir))

	page, err := j.builder.Build(ctx, input)
	if err != nil {
		var aerr *econnotes.AssemblyError
		if errors.As(err, &aerr) && page != nil {
			j.log.Error("block failed",
				zap.Int("index", aerr.Index),
				zap.String("kind", string(aerr.Kind)),
				zap.Int("rendered", page.Document.Len()),
				zap.Error(aerr.Err))
		}
		return nil, err
	}

	j.log.Debug("page built",
		zap.Int("figures", len(page.Document.Artifacts())),
		zap.Duration("took", j.now().Sub(start)))
	return page, nil
}

// input turns the decoded content into builder input, applying the
// configured overrides.
func (j *pageJob) input(p *content.Page, assetPrefix string) (econnotes.Input, error) {
	in := econnotes.Input{
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Date:        p.Date,
		TOC:         p.TOC,
		Blocks:      p.Blocks,
		SourceDir:   p.NotesDir,
		AssetPrefix: assetPrefix,
	}

	page := j.cfg.Page
	if page.Title != "" {
		in.Title = page.Title
	}
	if page.Subtitle != "" {
		in.Subtitle = page.Subtitle
	}
	if page.Date != "" {
		in.Date = page.Date
	}
	date, err := dateutil.Resolve(in.Date, j.now())
	if err != nil {
		return econnotes.Input{}, err
	}
	in.Date = date

	if page.CSS != "" {
		css, err := fileutil.ReadLimited(page.CSS, maxCSSSize)
		if err != nil {
			return econnotes.Input{}, fmt.Errorf("%w %s: %w", ErrReadCSS, page.CSS, err)
		}
		in.CSS = string(css)
	}

	switch {
	case j.noTOC:
		in.TOC = nil
	case j.cfg.TOC.Enabled:
		in.TOC = &econnotes.TOC{
			Title:    j.cfg.TOC.Title,
			MinDepth: j.cfg.TOC.MinDepth,
			MaxDepth: j.cfg.TOC.MaxDepth,
		}
	}
	return in, nil
}

// watchPaths lists the files whose changes affect the page.
func (j *pageJob) watchPaths() []string {
	var paths []string
	for _, p := range []string{j.cfg.Content.Path, j.cfg.Content.Notes, j.cfg.Page.CSS} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if style := j.cfg.CSS.Style; fileutil.IsFilePath(style) && !fileutil.IsCSS(style) {
		paths = append(paths, style)
	}
	return paths
}

// notesDir is the directory relative references in the notes resolve
// against, or "" without notes.
func (j *pageJob) notesDir() (string, error) {
	if j.cfg.Content.Notes == "" {
		return "", nil
	}
	return filepath.Abs(filepath.Dir(j.cfg.Content.Notes))
}
