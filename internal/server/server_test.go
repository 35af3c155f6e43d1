package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-econnotes"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingRender serves a fixed page with one figure and counts renders.
type countingRender struct {
	calls atomic.Int32
	err   error
}

func (c *countingRender) render(context.Context) (*econnotes.Page, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &econnotes.Page{
		HTML: []byte("<!DOCTYPE html><html><body><h1>Economics Study Notes</h1></body></html>"),
		Document: &econnotes.Document{Fragments: []econnotes.Fragment{
			{Index: 0, Kind: econnotes.KindHeading, HTML: "<h1>Economics Study Notes</h1>"},
			{Index: 1, Kind: econnotes.KindChart, Artifacts: []*econnotes.Artifact{
				{Title: "Budget Line", MediaType: econnotes.MediaTypeSVG, Data: []byte("<svg/>")},
			}},
		}},
	}, nil
}

func newTestServer(t *testing.T, cfg Config, r *countingRender) *Server {
	t.Helper()

	if cfg.Logger == nil {
		cfg.Logger = zaptest.NewLogger(t)
	}
	s, err := New(cfg, r.render)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func get(s http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNew_NilRender(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, nil); !errors.Is(err, ErrNilRender) {
		t.Errorf("New(nil) error = %v, want ErrNilRender", err)
	}
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	assetDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(assetDir, "ppc.png"), []byte("png bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, Config{AssetDir: assetDir}, &countingRender{})

	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{name: "page", path: "/", wantStatus: http.StatusOK, wantType: "text/html; charset=utf-8", wantContain: "<h1>Economics Study Notes</h1>"},
		{name: "figure", path: "/figures/0", wantStatus: http.StatusOK, wantType: econnotes.MediaTypeSVG, wantContain: "<svg/>"},
		{name: "figure out of range", path: "/figures/1", wantStatus: http.StatusNotFound},
		{name: "negative figure", path: "/figures/-1", wantStatus: http.StatusNotFound},
		{name: "figure not a number", path: "/figures/first", wantStatus: http.StatusBadRequest},
		{name: "health", path: "/healthz", wantStatus: http.StatusOK, wantContain: "ok"},
		{name: "asset", path: "/assets/ppc.png", wantStatus: http.StatusOK, wantContain: "png bytes"},
		{name: "missing asset", path: "/assets/nope.png", wantStatus: http.StatusNotFound},
		{name: "unknown route", path: "/admin", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPost, path: "/", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("%s %s status = %d, want %d", method, tt.path, rec.Code, tt.wantStatus)
			}
			if tt.wantType != "" && rec.Header().Get("Content-Type") != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
			if !strings.Contains(rec.Body.String(), tt.wantContain) {
				t.Errorf("body = %q, should contain %q", rec.Body.String(), tt.wantContain)
			}
		})
	}
}

func TestServer_NoAssetDir(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{}, &countingRender{})
	if rec := get(s, "/assets/ppc.png"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without an asset directory", rec.Code)
	}
}

func TestServer_CachesPage(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	r := &countingRender{}
	s := newTestServer(t, Config{Logger: zap.New(core)}, r)

	get(s, "/")
	get(s, "/")
	get(s, "/figures/0")
	if got := r.calls.Load(); got != 1 {
		t.Errorf("renders after three requests = %d, want 1", got)
	}
	if n := logs.FilterMessage("page rendered").Len(); n != 1 {
		t.Errorf("logged %d renders, want 1", n)
	}

	s.Invalidate()
	get(s, "/")
	if got := r.calls.Load(); got != 2 {
		t.Errorf("renders after Invalidate = %d, want 2", got)
	}
}

func TestServer_InvalidateDuringRender(t *testing.T) {
	t.Parallel()

	var version atomic.Int32
	version.Store(1)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	render := func(context.Context) (*econnotes.Page, error) {
		v := version.Load()
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return &econnotes.Page{
			HTML:     []byte("version " + strconv.Itoa(int(v))),
			Document: &econnotes.Document{},
		}, nil
	}
	s, err := New(Config{Logger: zaptest.NewLogger(t)}, render)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first := make(chan string)
	go func() { first <- get(s, "/").Body.String() }()
	<-started

	version.Store(2)
	s.Invalidate()
	close(release)

	if got := <-first; got != "version 1" {
		t.Errorf("in-flight GET / = %q, want version 1", got)
	}
	for range 2 {
		if got := get(s, "/").Body.String(); got != "version 2" {
			t.Errorf("GET / after Invalidate = %q, want version 2", got)
		}
	}
}

func TestServer_CacheTTL(t *testing.T) {
	t.Parallel()

	r := &countingRender{}
	s := newTestServer(t, Config{CacheTTL: time.Millisecond}, r)

	get(s, "/")
	time.Sleep(10 * time.Millisecond)
	get(s, "/")
	if got := r.calls.Load(); got != 2 {
		t.Errorf("renders = %d, want 2 after the TTL expired", got)
	}
}

func TestServer_RenderError(t *testing.T) {
	t.Parallel()

	r := &countingRender{err: errors.New("notes missing")}
	s := newTestServer(t, Config{}, r)

	for _, path := range []string{"/", "/figures/0"} {
		rec := get(s, path)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status = %d, want 500", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "notes missing") {
			t.Errorf("GET %s body = %q, want the render error", path, rec.Body.String())
		}
	}
	if got := r.calls.Load(); got != 2 {
		t.Errorf("renders = %d, want 2 since failures are not cached", got)
	}
}

func TestServer_RateLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{RateLimit: 2}, &countingRender{})

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		if rec := get(s, "/healthz"); rec.Code != want {
			t.Errorf("request %d status = %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := newTestServer(t, Config{}, &countingRender{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		<-done
		t.Fatalf("GET /healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("GET /healthz = %d %q", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServer_Run_BadAddr(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Config{Addr: "127.0.0.1:99999"}, &countingRender{})
	if err := s.Run(context.Background()); !errors.Is(err, ErrListen) {
		t.Errorf("Run() error = %v, want ErrListen", err)
	}
}

func TestServer_Serve_WatchInvalidates(t *testing.T) {
	t.Parallel()

	notes := filepath.Join(t.TempDir(), "lecture-notes.html")
	if err := os.WriteFile(notes, []byte("<p>v1</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := newTestServer(t, Config{WatchPaths: []string{notes}}, &countingRender{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	}()

	if _, err := s.page(ctx); err != nil {
		t.Fatalf("page() error = %v", err)
	}

	// The watcher starts concurrently; keep writing until it notices.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := os.WriteFile(notes, []byte("<p>v2</p>"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
		if _, cached := s.cache.Get(pageKey); !cached {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("cached page survived a change to a watched file")
		}
	}
}
