package main

import (
	"errors"
	"os"

	"github.com/alnah/go-econnotes"
	"github.com/alnah/go-econnotes/internal/assets"
	"github.com/alnah/go-econnotes/internal/config"
	"github.com/alnah/go-econnotes/internal/content"
	"github.com/alnah/go-econnotes/internal/dateutil"
	"github.com/alnah/go-econnotes/internal/server"
)

// Exit codes for the econnotes CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Page built or server stopped cleanly
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, content or blocks
	ExitIO      = 3 // Missing files, unwritable output, unusable address
	ExitRender  = 4 // A chart or diagram could not be drawn
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render errors (exit 4)
	if errors.Is(err, econnotes.ErrRender) {
		return ExitRender
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, content.ErrInvalidContent) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, econnotes.ErrInvalidBlock) ||
		errors.Is(err, econnotes.ErrUnknownBlock) ||
		errors.Is(err, econnotes.ErrInvalidTOCDepth) ||
		errors.Is(err, econnotes.ErrStyleNotFound) ||
		errors.Is(err, econnotes.ErrTemplateNotFound) ||
		errors.Is(err, econnotes.ErrInvalidAssetPath) ||
		errors.Is(err, econnotes.ErrPageLayout) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, content.ErrNotesNotFound) ||
		errors.Is(err, assets.ErrContentNotFound) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, server.ErrListen) ||
		errors.Is(err, server.ErrWatch) {
		return ExitIO
	}

	return ExitGeneral
}
