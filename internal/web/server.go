// Package web serves the upload UI and the conversion API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/convert"
	"github.com/cleared-dev/stmtconv/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end of the converter.
type Server struct {
	cfg      config.ServerConfig
	svc      *convert.Service
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	limiter  *rate.Limiter
	pages    *template.Template
	handler  chi.Router
}

// New builds a Server. A nil logger discards logs.
func New(cfg config.ServerConfig, svc *convert.Service, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		cfg:      cfg,
		svc:      svc,
		logger:   logger,
		registry: reg,
		metrics:  NewMetrics(reg),
		pages:    pages,
	}
	if cfg.RateLimitPerSecond > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), burst)
	}
	s.handler = s.routes()
	return s, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(assignRequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", RequestIDHeader},
			ExposedHeaders: []string{"Content-Disposition", RequestIDHeader},
		}).Handler)
	}

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/layouts", s.handleLayouts)
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit(s.limiter))
		r.Post("/convert", s.handleConvertPage)
		r.Post("/api/convert", s.handleConvertAPI)
	})
	if s.cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Run listens on the configured address until ctx is canceled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
