package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/logging"
)

// DefaultMaxBodyMB caps request bodies when Options.MaxBodyMB is zero.
const DefaultMaxBodyMB = 32

// Options configures the HTTP server.
type Options struct {
	// MaxBodyMB limits the size of a request body in megabytes.
	MaxBodyMB int
}

// Server serves the redaction API.
type Server struct {
	app     *app.App
	logger  *log.Logger
	maxBody int64
	router  chi.Router
}

// New builds the router around a.
func New(a *app.App, opts Options) *Server {
	logger := a.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	mb := opts.MaxBodyMB
	if mb <= 0 {
		mb = DefaultMaxBodyMB
	}
	s := &Server{
		app:     a,
		logger:  logger.WithPrefix("http"),
		maxBody: int64(mb) << 20,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Get("/presets", s.handlePresets)
		r.Get("/presets/{id}", s.handlePreset)
		r.Get("/history", s.handleHistory)

		r.Group(func(r chi.Router) {
			r.Use(s.limitBody)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/redact", s.handleRedact)
			r.Post("/batch", s.handleBatch)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
