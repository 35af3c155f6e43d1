package assets

import (
	"fmt"
	"strings"
	"unicode"
)

// maxAssetNameLength bounds names taken from config files and flags.
const maxAssetNameLength = 64

// ValidateAssetName checks that name can be used as a bare file name:
// non-empty, bounded, and free of separators, dots, spaces, and control
// characters. Returns ErrInvalidAssetName otherwise.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxAssetNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidAssetName, maxAssetNameLength)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	if strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace or control characters", ErrInvalidAssetName, name)
	}
	return nil
}
