package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-econnotes/internal/config"
)

const envPrefix = "ECONNOTES_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string        // ECONNOTES_CONFIG: config name or path
	Content    string        // ECONNOTES_CONTENT: content file or name
	Notes      string        // ECONNOTES_NOTES: lecture notes file
	Style      string        // ECONNOTES_STYLE: style name, CSS file or raw CSS
	AssetPath  string        // ECONNOTES_ASSET_PATH: custom asset directory
	Date       string        // ECONNOTES_DATE: page date
	Output     string        // ECONNOTES_OUTPUT: build output file
	Addr       string        // ECONNOTES_ADDR: serve listen address
	CacheTTL   time.Duration // ECONNOTES_CACHE_TTL: serve cache lifetime
	RateLimit  int           // ECONNOTES_RATE_LIMIT: serve requests per minute per client
}

// knownEnvVars lists valid ECONNOTES_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"ECONNOTES_CONFIG":     true,
	"ECONNOTES_CONTENT":    true,
	"ECONNOTES_NOTES":      true,
	"ECONNOTES_STYLE":      true,
	"ECONNOTES_ASSET_PATH": true,
	"ECONNOTES_DATE":       true,
	"ECONNOTES_OUTPUT":     true,
	"ECONNOTES_ADDR":       true,
	"ECONNOTES_CACHE_TTL":  true,
	"ECONNOTES_RATE_LIMIT": true,
}

// loadEnvConfig reads configuration from environment variables. Malformed
// numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("ECONNOTES_CONFIG"),
		Content:    os.Getenv("ECONNOTES_CONTENT"),
		Notes:      os.Getenv("ECONNOTES_NOTES"),
		Style:      os.Getenv("ECONNOTES_STYLE"),
		AssetPath:  os.Getenv("ECONNOTES_ASSET_PATH"),
		Date:       os.Getenv("ECONNOTES_DATE"),
		Output:     os.Getenv("ECONNOTES_OUTPUT"),
		Addr:       os.Getenv("ECONNOTES_ADDR"),
		RateLimit:  -1,
	}

	if ttl := os.Getenv("ECONNOTES_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d >= 0 {
			cfg.CacheTTL = d
		}
	}

	if limit := os.Getenv("ECONNOTES_RATE_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n >= 0 {
			cfg.RateLimit = n
		}
	}

	return cfg
}

// warnUnknownEnvVars writes warnings for unrecognized ECONNOTES_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config values with the environment variables
// that are set. Flags are merged afterwards, giving:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Content != "" {
		setContent(cfg, env.Content)
	}
	if env.Notes != "" {
		cfg.Content.Notes = env.Notes
	}
	if env.Style != "" {
		cfg.CSS.Style = env.Style
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Date != "" {
		cfg.Page.Date = env.Date
	}
	if env.Output != "" {
		cfg.Output.Path = env.Output
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.CacheTTL > 0 {
		cfg.Server.CacheTTL = env.CacheTTL
	}
	if env.RateLimit >= 0 {
		cfg.Server.RateLimit = env.RateLimit
	}
}
