// Package server hosts the presence HTTP/WebSocket transport. It owns no
// presence state itself; every action is delegated to the registry and the
// results fanned out to room or global audiences.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/presenced/internal/platform/ratelimiter"
	"github.com/louisbranch/presenced/internal/platform/timeouts"
	"github.com/louisbranch/presenced/internal/presence"
	"golang.org/x/net/websocket"
)

const (
	maxDecodeErrorsPerConn = 3

	defaultFrameRateLimit = 40
	defaultFrameRateBurst = 40
)

// Config defines the inputs for the presence transport boundary.
type Config struct {
	HTTPAddr          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	FrameRateLimit    float64
	FrameRateBurst    int
}

// Server hosts the presence HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

type service struct {
	registry *presence.Registry
	hub      *hub
	limiter  *ratelimiter.MapLimiter
	metrics  *metrics
}

func newService(frameRate float64, frameBurst int) *service {
	registry := presence.NewRegistry()
	return &service{
		registry: registry,
		hub:      newHub(),
		limiter:  ratelimiter.New(frameRate, frameBurst, 0),
		metrics:  newMetrics(registry),
	}
}

func (s *service) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toStatsPayload(s.registry.Statistics())); err != nil {
			log.Printf("presence: write stats response: %v", err)
		}
	})

	mux.Handle("/metrics", s.metrics.handler())

	wsHandler := websocket.Handler(s.handleConn)
	mux.HandleFunc("/ws-presence", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

// NewHandler creates presence routes with default limits for tests and
// embedding.
func NewHandler() http.Handler {
	return newService(defaultFrameRateLimit, defaultFrameRateBurst).routes()
}

// NewServer builds a configured presence server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}
	if config.FrameRateLimit <= 0 {
		config.FrameRateLimit = defaultFrameRateLimit
	}
	if config.FrameRateBurst <= 0 {
		config.FrameRateBurst = defaultFrameRateBurst
	}

	svc := newService(config.FrameRateLimit, config.FrameRateBurst)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           svc.routes(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
	}, nil
}

// Run creates and serves a presence server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init presence server: %w", err)
	}
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve presence: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("presence server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("presence server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
