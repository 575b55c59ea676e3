// Package server exposes the genui pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-genui/pkg/metrics"
	"github.com/goliatone/go-genui/pkg/orchestrator"
	"github.com/goliatone/go-genui/pkg/renderers/html"
)

const (
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 10 * time.Second
	maxBodyBytes           = 1 << 20
)

// Config holds the dependencies of the HTTP service.
type Config struct {
	Orchestrator    *orchestrator.Orchestrator
	Metrics         *metrics.Metrics
	Addr            string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
	// Version is reported by /healthz and the OpenAPI document.
	Version string
	// Assets overrides the embedded stylesheet directory served at /assets.
	Assets fs.FS
}

// Server is the genui HTTP service.
type Server struct {
	orchestrator    *orchestrator.Orchestrator
	metrics         *metrics.Metrics
	addr            string
	shutdownTimeout time.Duration
	logger          *slog.Logger
	version         string
	assets          fs.FS

	openapiOnce sync.Once
	openapiDoc  *openapi3.T
}

// New validates cfg and returns a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Orchestrator == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	if err := cfg.Orchestrator.Err(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s := &Server{
		orchestrator:    cfg.Orchestrator,
		metrics:         cfg.Metrics,
		addr:            cfg.Addr,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          cfg.Logger,
		version:         cfg.Version,
		assets:          cfg.Assets,
	}
	if s.addr == "" {
		s.addr = defaultAddr
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.version == "" {
		s.version = "dev"
	}
	if s.assets == nil {
		s.assets = html.AssetsFS()
	}
	return s, nil
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.logRequests,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalogue", s.handleCatalogue)
		r.Get("/openapi.json", s.handleOpenAPI)
		r.Post("/extract", s.handleExtract)
		r.Post("/render", s.handleRender)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionGrid)
			r.Delete("/", s.handleSessionReset)
			r.Post("/generate", s.handleGenerate)
		})
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is
// cancelled, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("genui: serving", slog.String("addr", listener.Addr().String()))

	eg.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("genui: shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("genui: request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", time.Since(started)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
