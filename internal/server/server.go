// Package server serves a built notes page over HTTP.
//
// Routes:
//
//	GET /                 the page, cached until the TTL expires or a watched file changes
//	GET /figures/{index}  the bytes of one chart or diagram, in document order
//	GET /assets/*         files under the asset directory (images the notes reference)
//	GET /healthz          liveness probe
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-econnotes"
)

// Sentinel errors for the server.
var (
	ErrNilRender = errors.New("server: nil render function")
	ErrListen    = errors.New("server: cannot listen")
	ErrWatch     = errors.New("server: cannot watch files")
)

// AssetPrefix is the URL prefix relative references are rewritten to.
const AssetPrefix = "/assets/"

const (
	pageKey           = "page"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// RenderFunc builds the page served at "/".
type RenderFunc func(ctx context.Context) (*econnotes.Page, error)

// Config configures a Server. The zero value serves on no address with no
// cache expiry, no rate limit, no asset directory and no watcher.
type Config struct {
	Addr string

	// CacheTTL bounds how long a rendered page is reused. Zero keeps it
	// until a watched file changes.
	CacheTTL time.Duration

	// RateLimit is the number of requests per minute allowed per client
	// IP. Zero disables limiting.
	RateLimit int

	// AssetDir is served under AssetPrefix. Empty disables the route.
	AssetDir string

	// WatchPaths are files whose changes invalidate the cached page.
	WatchPaths []string

	Logger *zap.Logger
}

// Server renders the page on demand and caches the result.
type Server struct {
	cfg    Config
	render RenderFunc
	log    *zap.Logger
	cache  *cache.Cache
	group  singleflight.Group
	router chi.Router

	// mu guards gen, which Invalidate bumps so a render started before
	// it is not cached.
	mu  sync.Mutex
	gen uint64
}

// New creates a Server around render.
func New(cfg Config, render RenderFunc) (*Server, error) {
	if render == nil {
		return nil, ErrNilRender
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		render: render,
		log:    log,
		// No janitor: a single key is checked for expiry on every read.
		cache:  cache.New(cfg.CacheTTL, 0),
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RateLimit > 0 {
		s.router.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
	}

	s.router.Get("/", s.handlePage)
	s.router.Get("/figures/{index}", s.handleFigure)
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.AssetDir != "" {
		fileServer := http.FileServer(http.Dir(s.cfg.AssetDir))
		s.router.Handle(AssetPrefix+"*", http.StripPrefix(AssetPrefix, fileServer))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Invalidate drops the cached page; the next request renders again, even
// when a render is already in flight.
func (s *Server) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache.Delete(pageKey)
	s.group.Forget(pageKey)
}

func (s *Server) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// store caches page unless Invalidate ran since gen was read.
func (s *Server) store(gen uint64, page *econnotes.Page) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.cache.SetDefault(pageKey, page)
	return true
}

// page returns the cached page or renders it. Concurrent misses share one
// render.
func (s *Server) page(ctx context.Context) (*econnotes.Page, error) {
	if cached, ok := s.cache.Get(pageKey); ok {
		return cached.(*econnotes.Page), nil
	}

	v, err, _ := s.group.Do(pageKey, func() (any, error) {
		gen := s.generation()
		start := time.Now()
		page, err := s.render(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		cached := s.store(gen, page)
		s.log.Info("page rendered",
			zap.Int("blocks", page.Document.Len()),
			zap.Int("bytes", len(page.HTML)),
			zap.Bool("cached", cached),
			zap.Duration("took", time.Since(start)))
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*econnotes.Page), nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.page(r.Context())
	if err != nil {
		s.renderFailed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page.HTML)
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "figure index must be a number", http.StatusBadRequest)
		return
	}

	page, err := s.page(r.Context())
	if err != nil {
		s.renderFailed(w, r, err)
		return
	}
	artifacts := page.Document.Artifacts()
	if index < 0 || index >= len(artifacts) {
		http.NotFound(w, r)
		return
	}

	art := artifacts[index]
	w.Header().Set("Content-Type", art.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	_, _ = w.Write(art.Data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("render failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	http.Error(w, "rendering the page failed: "+err.Error(), http.StatusInternalServerError)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Run listens on Config.Addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln, and watches Config.WatchPaths, until ctx is canceled
// or either fails. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("serving", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if len(s.cfg.WatchPaths) > 0 {
		g.Go(func() error {
			return Watch(gctx, s.cfg.WatchPaths, s.log, func(path string) {
				s.log.Info("source changed, dropping cached page", zap.String("path", path))
				s.Invalidate()
			})
		})
	}

	err := g.Wait()
	s.log.Info("server stopped")
	return err
}
