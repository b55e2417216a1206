// Package server runs the operational HTTP endpoint: liveness, readiness and
// Prometheus metrics. The bot itself talks to Discord over the gateway, so
// this listener exists purely for deployment tooling.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordieb/landy/internal/config"
	"github.com/jordieb/landy/pkg/logging"
)

// ReadyFunc reports whether the pipeline can serve answers. The readiness
// probe calls it on every request.
type ReadyFunc func(ctx context.Context) error

type Server struct {
	http   *http.Server
	logger *logging.Logger
}

func New(listenAddr string, ready ReadyFunc) *Server {
	logger := logging.NewLogger("OpsServer")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := ready(req.Context()); err != nil {
			logger.Warn("Readiness check failed", "error", err)
			http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	return &Server{
		http: &http.Server{
			Addr:         listenAddr,
			Handler:      r,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger,
	}
}

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run() {
	s.logger.Info("Ops server is listening", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Ops server crashed", "error", err, "address", s.http.Addr)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	s.http.SetKeepAlivesEnabled(false)
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("Could not shut down ops server gracefully", "error", err)
	}
}
