package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/storyline"
	"github.com/aretw0/storyline/internal/config"
	"github.com/aretw0/storyline/internal/presentation/tree"
	api "github.com/aretw0/storyline/pkg/adapters/http"
	"github.com/aretw0/storyline/pkg/adapters/memory"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Service bundles everything the serve command exposes.
type Service struct {
	Reporter *storyline.Reporter
	Backend  *memory.Service
	API      *api.Server
	Streams  *api.StreamManager
	Handler  http.Handler
	logger   *slog.Logger
	close    func() error
}

// Close releases the journal connection, if any.
func (s *Service) Close() error {
	return s.close()
}

// NewService wires the memory backend, metrics, the event stream and the
// lifecycle API into a single handler:
//
//	/metrics          Prometheus exposition
//	/launches         launch trees as JSON
//	/launches/{id}    one launch, rendered as ?format=text|mermaid|markdown (JSON by default)
//	everything else   the lifecycle API
func NewService(cfg config.Config, logger *slog.Logger) (*Service, error) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}

	backend := memory.NewService()
	streams := api.NewStreamManager(logger)
	rep, closer, err := createReporter(cfg, backend, logger, metrics.Hooks(), streams.Hooks())
	if err != nil {
		return nil, err
	}
	lifecycle := api.New(rep, api.WithLogger(logger), api.WithStreams(streams))

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/launches", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, backend.Launches())
	})
	r.Get("/launches/{id}", launchHandler(backend))
	r.Mount("/", lifecycle.Handler())

	return &Service{
		Reporter: rep,
		Backend:  backend,
		API:      lifecycle,
		Streams:  streams,
		Handler:  r,
		logger:   logger,
		close:    closer,
	}, nil
}

func launchHandler(backend *memory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := backend.Tree(domain.ItemID(chi.URLParam(r, "id")))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}

		format := r.URL.Query().Get("format")
		if format == "" {
			writeJSON(w, http.StatusOK, l)
			return
		}
		f, err := tree.ParseFormat(format)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		switch f {
		case tree.FormatMermaid:
			_, _ = fmt.Fprint(w, tree.Mermaid(l))
		case tree.FormatMarkdown:
			_, _ = fmt.Fprint(w, tree.Markdown(l))
		default:
			_, _ = fmt.Fprint(w, tree.Text(l))
		}
	}
}

// RunServe starts the HTTP service on cfg.Server.Addr and blocks until ctx
// is cancelled or the listener fails.
func RunServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	svc, err := NewService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close journal", "err", err)
		}
	}()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", cfg.Server.Addr, err)
	}
	return svc.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled or the listener fails.
//
// On the way out the event streams are closed so Shutdown does not wait on
// them, then any open items are finished as INTERRUPTED and the launch is
// closed. The cleanup gets its own deadline: ctx is already done by then.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.Streams.Close)
	s.logger.Info("Storyline HTTP server listening", "addr", ln.Addr().String())

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Graceful shutdown failed", "err", err)
			_ = srv.Close()
		}
		cancel()
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.API.FinishAll(cleanupCtx, domain.StatusInterrupted)
	s.logger.Info("Server stopped")
	return serveErr
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
