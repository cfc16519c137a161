package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dj-oyu/plant-monitor/internal/logger"
)

// OpsRouter routes /metrics and /healthz. It never touches the sensor.
func (m *Metrics) OpsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(m.Snapshot()); err != nil {
			logger.Warn("Metrics", "healthz encode failed: %v", err)
		}
	})
	return r
}

// Serve runs the ops listener on addr until ctx is cancelled. An empty addr
// disables it and Serve blocks until ctx ends.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		<-ctx.Done()
		return nil
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           m.OpsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Metrics", "Ops listener on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// ServeWithRetry keeps the ops listener up until ctx is cancelled. A bind or
// serve failure is logged and retried after retry; it never ends the process.
func (m *Metrics) ServeWithRetry(ctx context.Context, addr string, retry time.Duration) {
	for {
		err := m.Serve(ctx, addr)
		if ctx.Err() != nil {
			return
		}
		m.OpsFailures.Add(1)
		logger.Error("Metrics", "Ops listener on %s failed: %v", addr, err)

		t := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}
