// Package dateutil resolves the page date shown under the title.
//
// A date value is either literal text ("Fall 2024", "Week 3") or one of the
// "today" forms, which render the current date:
//
//	today               2024-09-30
//	today:long          September 30, 2024
//	today:DD/MM/YYYY    30/09/2024
//	today:[Week of] MMM D   Week of Sep 30
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a malformed "today:" layout.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxLayoutLength bounds a user layout.
const MaxLayoutLength = 50

// DefaultLayout is used by a bare "today".
const DefaultLayout = "YYYY-MM-DD"

const keyword = "today"

// Presets are named layouts, matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"weekday":  "dddd, MMMM D",
}

// tokens are tried longest first at each position.
var tokens = []struct{ user, layout string }{
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Layout translates a user layout into a time.Format layout. Text inside
// square brackets is kept literally; any other character that is not part
// of a token is kept as well.
func Layout(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: empty layout", ErrInvalidDateFormat)
	case len(format) > MaxLayoutLength:
		return "", fmt.Errorf("%w: layout longer than %d characters", ErrInvalidDateFormat, MaxLayoutLength)
	}

	var sb strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			sb.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		n := 1
		lit := rest[:1]
		for _, t := range tokens {
			if strings.HasPrefix(rest, t.user) {
				n, lit = len(t.user), t.layout
				break
			}
		}
		sb.WriteString(lit)
		rest = rest[n:]
	}
	return sb.String(), nil
}

// Resolve renders value for now. Values that do not start with "today"
// are returned unchanged.
func Resolve(value string, now time.Time) (string, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < len(keyword) || !strings.EqualFold(trimmed[:len(keyword)], keyword) {
		return value, nil
	}

	spec := trimmed[len(keyword):]
	switch {
	case spec == "":
		spec = DefaultLayout
	case spec[0] != ':':
		// "todays notes" and the like are literal text.
		return value, nil
	default:
		spec = spec[1:]
		if spec == "" {
			return "", fmt.Errorf("%w: nothing after %q", ErrInvalidDateFormat, keyword+":")
		}
		if preset, ok := Presets[strings.ToLower(spec)]; ok {
			spec = preset
		}
	}

	layout, err := Layout(spec)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}
