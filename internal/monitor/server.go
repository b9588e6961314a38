// Package monitor serves the pipeline's derived views and the start/stop
// controls over local HTTP, for UI layers that live outside this process.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lab-ups/upsmon/internal/controller"
	"github.com/lab-ups/upsmon/internal/rxlog"
	"github.com/lab-ups/upsmon/internal/stream"
)

// Server exposes the monitor API on a local port.
type Server struct {
	Router *chi.Mux
	port   int
	logger *slog.Logger
	server *http.Server
}

// New builds the router and handler set. The server does not listen until
// Start is called.
func New(port int, ctrl *controller.Controller, events *rxlog.Log, session *stream.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// Apply middleware in order
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(15 * time.Second))
	r.Use(middleware.Recoverer)

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "upsmon")
	})

	h := &handlers{ctrl: ctrl, events: events, session: session}
	r.Route("/api/monitor", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/events", h.eventList)
		r.Get("/counts", h.counts)
		r.Post("/start", h.start)
		r.Post("/stop", h.stop)
		r.Post("/clear", h.clear)
	})

	return &Server{
		Router: r,
		port:   port,
		logger: logger,
	}
}

// Start begins serving in the background.
func (s *Server) Start() {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		s.logger.Info("monitor API listening", slog.Int("port", s.port))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("monitor API server error", slog.String("error", err.Error()))
		}
	}()
}

// Shutdown gracefully stops the server. No-op if Start never ran.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
