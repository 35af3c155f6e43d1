package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-econnotes/internal/config"
	"github.com/alnah/go-econnotes/internal/fileutil"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// sourceFlags locate the content and the lecture notes.
type sourceFlags struct {
	content string
	notes   string
}

// pageFlags override the page header.
type pageFlags struct {
	title    string
	subtitle string
	date     string
	css      string
}

// assetFlags holds asset-related flags.
type assetFlags struct {
	style     string
	assetPath string
	noStyle   bool
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	title    string
	minDepth int
	maxDepth int
	disabled bool
}

// pageOptions are the flags of every command that renders the page.
type pageOptions struct {
	common commonFlags
	source sourceFlags
	page   pageFlags
	assets assetFlags
	toc    tocFlags
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	pageOptions
	output string
}

// serveFlags holds all flags for the serve command. The *Set fields record
// flags given explicitly, since their zero values are meaningful.
type serveFlags struct {
	pageOptions
	addr         string
	cacheTTL     time.Duration
	cacheTTLSet  bool
	rateLimit    int
	rateLimitSet bool
	noWatch      bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addSourceFlags adds content and notes flags to a FlagSet.
func addSourceFlags(fs *flag.FlagSet, f *sourceFlags) {
	fs.StringVar(&f.content, "content", "", "content YAML file or built-in content name")
	fs.StringVarP(&f.notes, "notes", "n", "", "lecture notes file (.html or .md)")
}

// addPageFlags adds page header flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVar(&f.title, "title", "", "page title")
	fs.StringVar(&f.subtitle, "subtitle", "", "page subtitle")
	fs.StringVar(&f.date, "date", "", "page date: literal text or \"today[:layout]\"")
	fs.StringVar(&f.css, "css", "", "extra CSS file applied after the theme")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVarP(&f.style, "style", "s", "", "style name, CSS file or raw CSS")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.noStyle, "no-style", false, "disable the theme")
}

// addTOCFlags adds TOC flags to a FlagSet.
func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.StringVar(&f.title, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.minDepth, "toc-min-depth", 0, "min heading depth for TOC (1-6, default: 2)")
	fs.IntVar(&f.maxDepth, "toc-max-depth", 0, "max heading depth for TOC (1-6, default: 3)")
	fs.BoolVar(&f.disabled, "no-toc", false, "disable table of contents")
}

func addPageOptions(fs *flag.FlagSet, o *pageOptions) {
	addCommonFlags(fs, &o.common)
	addSourceFlags(fs, &o.source)
	addPageFlags(fs, &o.page)
	addAssetFlags(fs, &o.assets)
	addTOCFlags(fs, &o.toc)
}

// parseBuildFlags parses build command flags.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &buildFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (\"-\" = stdout)")
	addPageOptions(fs, &f.pageOptions)

	fs.Usage = func() { printBuildUsage(stderr) }

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default "+config.DefaultAddr+")")
	fs.DurationVar(&f.cacheTTL, "cache-ttl", 0, "page cache lifetime, 0 = until a file changes")
	fs.IntVar(&f.rateLimit, "rate-limit", 0, "requests per minute per client, 0 = unlimited")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not watch source files")
	addPageOptions(fs, &f.pageOptions)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	f.cacheTTLSet = fs.Changed("cache-ttl")
	f.rateLimitSet = fs.Changed("rate-limit")
	return f, nil
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

// setContent stores v as a content file path or a built-in content name.
func setContent(cfg *config.Config, v string) {
	ext := strings.ToLower(filepath.Ext(v))
	if fileutil.IsFilePath(v) || ext == ".yaml" || ext == ".yml" {
		cfg.Content.Path, cfg.Content.Name = v, ""
		return
	}
	cfg.Content.Name, cfg.Content.Path = v, ""
}

// mergePageOptions applies flags given on the command line to cfg.
func mergePageOptions(o *pageOptions, cfg *config.Config) {
	if o.source.content != "" {
		setContent(cfg, o.source.content)
	}
	if o.source.notes != "" {
		cfg.Content.Notes = o.source.notes
	}

	if o.page.title != "" {
		cfg.Page.Title = o.page.title
	}
	if o.page.subtitle != "" {
		cfg.Page.Subtitle = o.page.subtitle
	}
	if o.page.date != "" {
		cfg.Page.Date = o.page.date
	}
	if o.page.css != "" {
		cfg.Page.CSS = o.page.css
	}

	if o.assets.style != "" {
		cfg.CSS.Style = o.assets.style
	}
	if o.assets.assetPath != "" {
		cfg.Assets.BasePath = o.assets.assetPath
	}

	// Any TOC flag enables the override.
	if o.toc.title != "" || o.toc.minDepth != 0 || o.toc.maxDepth != 0 {
		cfg.TOC.Enabled = true
		if o.toc.title != "" {
			cfg.TOC.Title = o.toc.title
		}
		if o.toc.minDepth != 0 {
			cfg.TOC.MinDepth = o.toc.minDepth
		}
		if o.toc.maxDepth != 0 {
			cfg.TOC.MaxDepth = o.toc.maxDepth
		}
	}
}

// mergeServeFlags applies serve flags given on the command line to cfg.
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	mergePageOptions(&f.pageOptions, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.cacheTTLSet {
		cfg.Server.CacheTTL = f.cacheTTL
	}
	if f.rateLimitSet {
		cfg.Server.RateLimit = f.rateLimit
	}
	if f.noWatch {
		cfg.Server.Watch = false
	}
}
