// Package config loads the YAML configuration of the econnotes CLI.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-econnotes/internal/fileutil"
	"github.com/alnah/go-econnotes/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxNameLength     = 64
	MaxTitleLength    = 200
	MaxSubtitleLength = 200
	MaxDateLength     = 60 // "today:[Week of] MMM D" and the like
	MaxTOCTitleLength = 100
	MaxAddrLength     = 255
)

// Defaults applied by DefaultConfig.
const (
	DefaultOutput    = "course-notes.html"
	DefaultAddr      = "127.0.0.1:8080"
	DefaultCacheTTL  = 10 * time.Minute
	DefaultRateLimit = 120 // requests per minute per client
)

// AppDirName is the directory under os.UserConfigDir searched for named
// configs.
const AppDirName = "go-econnotes"

// Config holds everything a build or serve run needs.
type Config struct {
	Content ContentConfig `yaml:"content"`
	Page    PageConfig    `yaml:"page"`
	CSS     CSSConfig     `yaml:"css"`
	Assets  AssetsConfig  `yaml:"assets"`
	TOC     TOCConfig     `yaml:"toc"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
}

// ContentConfig locates the page content and the lecture notes.
type ContentConfig struct {
	Path  string `yaml:"path"`  // YAML content file on disk
	Name  string `yaml:"name"`  // content name in the asset directory (empty = economics)
	Notes string `yaml:"notes"` // lecture-note markup, .html or .md
}

// PageConfig overrides the page header of the content file.
type PageConfig struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Date     string `yaml:"date"` // literal text or "today[:layout]"
	CSS      string `yaml:"css"`  // extra CSS file appended after the theme
}

// CSSConfig selects the theme.
type CSSConfig struct {
	Style string `yaml:"style"` // name, CSS file or raw CSS (empty = light)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// TOCConfig overrides the table of contents of the content file when
// enabled.
type TOCConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Title    string `yaml:"title"`
	MinDepth int    `yaml:"minDepth"`
	MaxDepth int    `yaml:"maxDepth"`
}

// OutputConfig defines where build writes the page.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig defines the serve command.
type ServerConfig struct {
	Addr      string        `yaml:"addr"`
	CacheTTL  time.Duration `yaml:"cacheTTL"`
	RateLimit int           `yaml:"rateLimit"` // requests per minute per client, 0 = unlimited
	Watch     bool          `yaml:"watch"`
}

// Validate checks field lengths and ranges. Called by LoadConfig, and
// again by the CLI once flags and environment are merged.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"content.path", c.Content.Path, MaxPathLength},
		{"content.name", c.Content.Name, MaxNameLength},
		{"content.notes", c.Content.Notes, MaxPathLength},
		{"page.title", c.Page.Title, MaxTitleLength},
		{"page.subtitle", c.Page.Subtitle, MaxSubtitleLength},
		{"page.date", c.Page.Date, MaxDateLength},
		{"page.css", c.Page.CSS, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"toc.title", c.TOC.Title, MaxTOCTitleLength},
		{"output.path", c.Output.Path, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if c.Content.Path != "" && c.Content.Name != "" {
		return fmt.Errorf("%w: content.path and content.name are mutually exclusive", ErrInvalidValue)
	}

	if c.TOC.Enabled {
		if c.TOC.MinDepth < 0 || c.TOC.MinDepth > 6 {
			return fmt.Errorf("%w: toc.minDepth must be between 1 and 6, got %d", ErrInvalidValue, c.TOC.MinDepth)
		}
		if c.TOC.MaxDepth < 0 || c.TOC.MaxDepth > 6 {
			return fmt.Errorf("%w: toc.maxDepth must be between 1 and 6, got %d", ErrInvalidValue, c.TOC.MaxDepth)
		}
	}

	if c.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
			return fmt.Errorf("%w: server.addr %q: %v", ErrInvalidValue, c.Server.Addr, err)
		}
	}
	if c.Server.CacheTTL < 0 {
		return fmt.Errorf("%w: server.cacheTTL must not be negative, got %s", ErrInvalidValue, c.Server.CacheTTL)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rateLimit must not be negative, got %d", ErrInvalidValue, c.Server.RateLimit)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Path: DefaultOutput},
		Server: ServerConfig{
			Addr:      DefaultAddr,
			CacheTTL:  DefaultCacheTTL,
			RateLimit: DefaultRateLimit,
			Watch:     true,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigParse, yamlutil.Describe(err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files tried for a config name, in order: the
// current directory, then the user config directory; .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
