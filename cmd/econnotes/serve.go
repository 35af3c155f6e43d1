package main

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/zap"

	"github.com/alnah/go-econnotes"
	"github.com/alnah/go-econnotes/internal/hints"
	"github.com/alnah/go-econnotes/internal/server"
)

// runServe serves the page until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, err := parseServeFlags(args, env.Stderr)
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
	mergeServeFlags(f, cfg)

	job, err := newPageJob(cfg, &f.pageOptions, env, log)
	if err != nil {
		return err
	}
	srv, err := newServer(job, log)
	if err != nil {
		return err
	}

	if err := srv.Run(ctx); err != nil {
		if errors.Is(err, server.ErrListen) {
			return fmt.Errorf("%w%s", err, hints.ForListen(cfg.Server.Addr, errors.Is(err, syscall.EADDRINUSE)))
		}
		return err
	}
	return nil
}

// newServer wires job into an HTTP server. The notes directory is served
// under server.AssetPrefix, where the page's relative references point.
func newServer(job *pageJob, log *zap.Logger) (*server.Server, error) {
	assetDir, err := job.notesDir()
	if err != nil {
		return nil, err
	}

	cfg := server.Config{
		Addr:      job.cfg.Server.Addr,
		CacheTTL:  job.cfg.Server.CacheTTL,
		RateLimit: job.cfg.Server.RateLimit,
		AssetDir:  assetDir,
		Logger:    log,
	}
	if job.cfg.Server.Watch {
		cfg.WatchPaths = job.watchPaths()
	}

	return server.New(cfg, func(ctx context.Context) (*econnotes.Page, error) {
		return job.render(ctx, server.AssetPrefix)
	})
}
