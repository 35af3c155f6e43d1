package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: econnotes <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Render the notes page to an HTML file")
	fmt.Fprintln(w, "  serve      Serve the notes page over HTTP")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'econnotes help <command>' for details on a specific command.")
}

// printPageFlags prints the flags shared by build and serve.
func printPageFlags(w io.Writer) {
	fmt.Fprintln(w, "Source:")
	fmt.Fprintln(w, "      --content <s>         Content YAML file or built-in name (default: economics)")
	fmt.Fprintln(w, "  -n, --notes <path>        Lecture notes, .html or .md")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --title <s>           Page title")
	fmt.Fprintln(w, "      --subtitle <s>        Page subtitle")
	fmt.Fprintln(w, "      --date <s>            Date: literal, \"today\" or \"today:LAYOUT\"")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, dddd, ddd")
	fmt.Fprintln(w, "                            Presets: iso, european, us, long, weekday")
	fmt.Fprintln(w, "                            Use [text] to escape literals: [Week of] MMM D")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file applied after the theme")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "  -s, --style <s>           Style name, CSS file or raw CSS (default: light)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles, templates and content")
	fmt.Fprintln(w, "      --no-style            Disable the theme")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Table of Contents:")
	fmt.Fprintln(w, "      --toc-title <s>       TOC heading text")
	fmt.Fprintln(w, "      --toc-min-depth <n>   Min heading depth (1-6)")
	fmt.Fprintln(w, "      --toc-max-depth <n>   Max heading depth (1-6)")
	fmt.Fprintln(w, "      --no-toc              Disable table of contents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: econnotes build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the notes page to a standalone HTML file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file, \"-\" for stdout (default: course-notes.html)")
	fmt.Fprintln(w)
	printPageFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: econnotes serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the notes page over HTTP, re-rendering when source files change.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default: 127.0.0.1:8080)")
	fmt.Fprintln(w, "      --cache-ttl <d>       Page cache lifetime, 0 = until a file changes")
	fmt.Fprintln(w, "      --rate-limit <n>      Requests per minute per client, 0 = unlimited")
	fmt.Fprintln(w, "      --no-watch            Do not watch source files")
	fmt.Fprintln(w)
	printPageFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: econnotes version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: econnotes help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}
