// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"net"
	"strings"

	"github.com/alnah/go-econnotes/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForConfigNotFound suggests --config or creating a file in the user
// config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-econnotes") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForNotesNotFound returns hints for a missing lecture notes file.
func ForNotesNotFound() string {
	return format("pass --notes /path/to/notes.html or set notes: in the config file")
}

// ForInvalidContent points at the content file rules.
func ForInvalidContent() string {
	return format("each block entry needs exactly one kind (heading, text, markdown, table, chart, diagram, image, columns)")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound lists the embedded styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForListen returns hints for a server that fails to bind or cannot be
// reached from outside a container.
func ForListen(addr string, inUse bool) string {
	var hints []string

	if inUse {
		hints = append(hints, "another process holds "+addr+"; use --addr to pick a free port")
	}

	host, _, err := net.SplitHostPort(addr)
	if err == nil && IsInContainer() && isLoopback(host) {
		hints = append(hints, "listen on 0.0.0.0 to reach the server from outside the container")
	}

	return formatHints(hints)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
