package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/logger"
)

// shutdownTimeout bounds how long in-flight uploads may finish after cancel.
const shutdownTimeout = 5 * time.Second

// Options configures the web server.
type Options struct {
	// MaxUploadBytes caps the size of a request body.
	MaxUploadBytes int64

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RateLimit throttles /convert and /strip.
	RateLimit domain.RateLimitSettings
}

// OptionsFromSettings builds server options from application settings.
func OptionsFromSettings(s domain.Settings) Options {
	return Options{
		MaxUploadBytes: s.Server.MaxUploadBytes,
		ReadTimeout:    s.Server.ReadTimeout(),
		WriteTimeout:   s.Server.WriteTimeout(),
		RateLimit:      s.RateLimit,
	}
}

// Server is the upload web UI.
type Server struct {
	ports   *Ports
	opts    Options
	limiter *RateLimiter
	mux     *http.ServeMux
}

// NewServer creates a new web server with the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = domain.DefaultMaxUploadBytes
	}

	s := &Server{
		ports:   ports,
		opts:    opts,
		limiter: NewRateLimiter(opts.RateLimit),
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.run(s.handleIndex))
	s.mux.HandleFunc("POST /convert", s.run(s.limiter.wrap(s.handleConvert)))
	s.mux.HandleFunc("POST /strip", s.run(s.limiter.wrap(s.handleStrip)))
	s.mux.HandleFunc("GET /download/{id}", s.run(s.handleDownload))
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

// Handler returns the HTTP handler serving the UI.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ApplyRateLimit changes rate limits on the running server.
func (s *Server) ApplyRateLimit(settings domain.RateLimitSettings) {
	s.limiter.Apply(settings)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}()

	logger.Info("listening on http://%s", listener.Addr())
	err := httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
