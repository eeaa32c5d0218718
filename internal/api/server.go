package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/daangn/permalink/internal/batch"
	"github.com/daangn/permalink/internal/config"
	"github.com/daangn/permalink/internal/logger"
	"github.com/daangn/permalink/internal/watch"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchUpdate is broadcast to WebSocket clients when a watched batch file
// changes.
type BatchUpdate struct {
	Path    string         `json:"path"`
	Results []batch.Result `json:"results,omitempty"`
	Summary batch.Summary  `json:"summary"`
	Error   string         `json:"error,omitempty"`
}

// Server wraps the HTTP server for the permalink service.
type Server struct {
	httpServer *http.Server
	handler    *Handler
	wsHub      *WebSocketHub
	watcher    *watch.FileWatcher
	log        logger.Logger
	cfg        config.ServerConfig
}

// NewServer creates a server from cfg. If watchPath is non-empty, the batch
// file there is re-resolved on every change and the results broadcast to
// WebSocket clients.
func NewServer(cfg *config.Config, log logger.Logger, watchPath string) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	handler := NewHandler(log, cfg.Batch.Concurrency)
	wsHub := NewWebSocketHub(handler, cfg.Server.AllowedOrigin)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.HandleFunc("GET /api/v1/ws", wsHub.ServeWS)
	mux.Handle("GET /metrics", promhttp.Handler())

	s := &Server{
		handler: handler,
		wsHub:   wsHub,
		log:     log,
		cfg:     cfg.Server,
	}

	if watchPath != "" {
		watcher, err := watch.New(watchPath, s.onBatchFileChange, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		s.watcher = watcher
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      RequestIDs(Logging(log, Cors(cfg.Server.AllowedOrigin, mux))),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run but accepts connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.log.Warn("failed to start file watcher", logger.Error(err))
		} else {
			// Resolve once up front so clients connecting later see current state.
			s.onBatchFileChange(watch.Change{Type: watch.Modified, Path: s.watcher.Path()})
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	s.log.Info("permalink service listening", logger.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		s.stopWatcher()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopWatcher()
	s.log.Info("permalink service shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) stopWatcher() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Stop(); err != nil {
		s.log.Warn("failed to stop file watcher", logger.Error(err))
	}
}

func (s *Server) onBatchFileChange(change watch.Change) {
	if change.Type == watch.Deleted {
		return
	}

	update := BatchUpdate{Path: change.Path}
	results, err := resolveFile(change.Path, s.handler.concurrency)
	if err != nil {
		update.Error = err.Error()
		s.log.Warn("batch file resolution failed", logger.String("path", change.Path), logger.Error(err))
	} else {
		update.Results = results
		update.Summary = batch.Summarize(results)
		s.log.Info("batch file resolved",
			logger.String("path", change.Path),
			logger.Int("total", update.Summary.Total),
			logger.Int("failed", update.Summary.Failed),
		)
	}

	s.wsHub.Broadcast(WebSocketMessage{Type: MessageBatchUpdate, Data: update})
}

func resolveFile(path string, concurrency int) ([]batch.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	items, err := batch.Read(f)
	if err != nil {
		return nil, err
	}
	return batch.Run(context.Background(), items, concurrency)
}
