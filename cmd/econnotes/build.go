package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/alnah/go-econnotes/internal/fileutil"
	"github.com/alnah/go-econnotes/internal/hints"
)

// ErrWriteOutput indicates the built page could not be written.
var ErrWriteOutput = errors.New("writing output")

// stdoutPath selects standard output as the build destination.
const stdoutPath = "-"

// runBuild renders the page once and writes it to the output path.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	f, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	log := newLogger(env.Stderr, f.common)
	defer func() { _ = log.Sync() }()
	setMaxProcs(log)
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(f.common.config, loadEnvConfig())
	if err != nil {
		return err
	}
	mergePageOptions(&f.pageOptions, cfg)
	if f.output != "" {
		cfg.Output.Path = f.output
	}

	job, err := newPageJob(cfg, &f.pageOptions, env, log)
	if err != nil {
		return err
	}
	page, err := job.render(ctx, "")
	if err != nil {
		return err
	}

	if cfg.Output.Path == stdoutPath {
		if _, err := env.Stdout.Write(page.HTML); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}

	if err := writeOutput(cfg.Output.Path, page.HTML); err != nil {
		return err
	}
	log.Info("page written",
		zap.String("path", cfg.Output.Path),
		zap.Int("blocks", page.Document.Len()),
		zap.Int("figures", len(page.Document.Artifacts())))
	fmt.Fprintln(env.Stdout, cfg.Output.Path)
	return nil
}

// writeOutput writes data atomically, creating the parent directory.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %w%s", ErrWriteOutput, err, hints.ForOutputDirectory())
		}
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
