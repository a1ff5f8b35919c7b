package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/toybot/core/logger"
)

type statsResponse struct {
	Sessions  int   `json:"sessions"`
	Intent    int64 `json:"intent"`
	Retrieval int64 `json:"retrieval"`
	Failure   int64 `json:"failure"`
	Total     int64 `json:"total"`
	// Stored is the row count of the stats table, when one is configured.
	Stored *int64 `json:"stored,omitempty"`
}

func (a *App) opsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))
	r.Get("/stats", a.handleStats)
	return r
}

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	totals, sessions := a.comp.Store.Totals()
	resp := statsResponse{
		Sessions:  sessions,
		Intent:    totals.Intent,
		Retrieval: totals.Retrieval,
		Failure:   totals.Failure,
		Total:     totals.Total(),
	}
	if a.outcomes != nil {
		stored, err := a.outcomes.Counts(r.Context())
		if err != nil {
			logger.Warn(r.Context(), logger.ComponentOps, "stats.count", slog.String("err", err.Error()))
		} else {
			n := stored.Total()
			resp.Stored = &n
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn(r.Context(), logger.ComponentOps, "stats.encode", slog.String("err", err.Error()))
	}
}

// serveOps runs the ops server until ctx is done.
func (a *App) serveOps(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Ops.Listen,
		Handler:           a.opsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, logger.ComponentOps, "ops.listen", slog.String("listen", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, logger.ComponentOps, "ops.listen", slog.String("err", err.Error()))
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info(ctx, logger.ComponentOps, "ops.stop")
	return nil
}
