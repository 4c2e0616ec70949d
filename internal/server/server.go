// Package server provides the development preview server: it serves the
// optimized output tree and pushes reload notifications to connected pages
// over a websocket when the asset pipeline rebuilds.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/pagekit/internal/logging"
)

// reloadScript is injected into served HTML pages when live reload is on.
const reloadScript = `<script>(function(){var s=new WebSocket("ws://"+location.host+"/__pagekit/reload");s.onmessage=function(){location.reload();};})();</script>`

// PreviewServer serves a static directory with optional live reload.
type PreviewServer struct {
	root       string
	addr       string
	liveReload bool
	logger     logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// New creates a PreviewServer for the given output directory.
func New(host string, port int, root string, liveReload bool, logger logging.Logger) *PreviewServer {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &PreviewServer{
		root:       root,
		addr:       fmt.Sprintf("%s:%d", host, port),
		liveReload: liveReload,
		logger:     logger.WithComponent("server"),
		clients:    make(map[*websocket.Conn]struct{}),
	}
}

// Addr returns the host:port the server binds to.
func (s *PreviewServer) Addr() string {
	return s.addr
}

// Handler returns the HTTP handler: static files plus the reload endpoint.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/__pagekit/reload", s.handleReload)
	mux.HandleFunc("/", s.handleStatic)

	return mux
}

// Start serves until ctx is cancelled.
func (s *PreviewServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "preview server listening", "addr", s.addr, "root", s.root)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)

		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// NotifyReload tells every connected page to reload.
func (s *PreviewServer) NotifyReload() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, conn := range conns {
		if err := conn.Write(ctx, websocket.MessageText, []byte("reload")); err != nil {
			s.drop(conn)
		}
	}
}

// ClientCount returns the number of connected live-reload clients.
func (s *PreviewServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.clients)
}

func (s *PreviewServer) handleReload(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket accept failed")

		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Hold the connection open; we never expect client messages.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			s.drop(conn)

			return
		}
	}
}

func (s *PreviewServer) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// handleStatic serves files from the root directory. HTML pages get the
// live-reload script appended when live reload is enabled.
func (s *PreviewServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/")
	if rel == "" {
		rel = "index.html"
	}

	// Resolve and confine the path to the served root.
	path := filepath.Join(s.root, filepath.Clean("/"+rel))
	if !strings.HasPrefix(path, filepath.Clean(s.root)+string(filepath.Separator)) &&
		path != filepath.Clean(s.root) {
		http.NotFound(w, r)

		return
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "index.html")
	}

	if !s.liveReload || !strings.HasSuffix(path, ".html") {
		http.ServeFile(w, r, path)

		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		http.NotFound(w, r)

		return
	}

	page := string(data)
	if idx := strings.LastIndex(page, "</body>"); idx >= 0 {
		page = page[:idx] + reloadScript + page[idx:]
	} else {
		page += reloadScript
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
