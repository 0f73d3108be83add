// Command fabtrackd serves fabrication progress reports over HTTP. On start
// it resumes the last persisted session, or seeds one from a default workbook
// when configured, then exposes the report API, Prometheus metrics and a
// health probe until terminated.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fabtrack/internal/adapters/reports"
	"fabtrack/internal/core"
	"fabtrack/internal/ingest"
	"fabtrack/internal/sourcestore"
	"fabtrack/internal/state"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("FABTRACK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	stateStore, err := state.Open(ctx)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer func() { _ = stateStore.Close() }()

	sources, err := sourcestore.Open(ctx)
	if err != nil {
		return fmt.Errorf("open source store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	recorder, err := core.NewPromMetricsRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	service := core.NewService(core.WithMetrics(recorder))
	if err := registry.Register(core.NewKPICollector(service)); err != nil {
		return fmt.Errorf("register kpi collector: %w", err)
	}

	if err := hydrate(ctx, logger, service, stateStore); err != nil {
		return err
	}

	handler := reports.NewHandler(service)
	handler.Sources = sources
	handler.State = stateStore

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", logRequests(logger, handler))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", addr),
			zap.String("state_driver", os.Getenv("FABTRACK_STATE_DRIVER")),
			zap.String("source_driver", string(sources.Driver())),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// hydrate restores the persisted session, or seeds one from the default
// workbook when no session was persisted yet. Starting empty is not an error:
// the dashboard reports zeros until a source is uploaded.
func hydrate(ctx context.Context, logger *zap.Logger, service *core.Service, store state.Store) error {
	snap, ok, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted session: %w", err)
	}
	if ok {
		restored := service.Restore(ctx, snap)
		logger.Info("session restored",
			zap.String("source", restored.SourceKey),
			zap.Int("rows", restored.Rows()),
			zap.Time("loaded_at", restored.LoadedAt),
		)
		return nil
	}

	seed := os.Getenv("FABTRACK_DEFAULT_WORKBOOK")
	if seed == "" {
		logger.Info("starting with empty session")
		return nil
	}
	data, err := os.ReadFile(seed)
	if err != nil {
		return fmt.Errorf("read default workbook: %w", err)
	}
	records, err := ingest.DecodeRecords(seed, data)
	if err != nil {
		return fmt.Errorf("decode default workbook: %w", err)
	}
	snap = service.Replace(ctx, seed, records)
	if err := store.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist seeded session: %w", err)
	}
	logger.Info("session seeded from default workbook",
		zap.String("source", seed),
		zap.Int("rows", snap.Rows()),
	)
	return nil
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("FABTRACK_LOG_MODE") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// logRequests wraps the API handler with one structured access log line per
// request.
func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
