// Package metrics exposes prometheus collectors for the
// reconciliation pipeline on a standalone listener.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// ReconcileCandidates counts import candidates by plan outcome.
	ReconcileCandidates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playlater",
		Subsystem: "reconcile",
		Name:      "candidates_total",
		Help:      "Import candidates processed, labelled by plan outcome.",
	}, []string{"outcome"})

	// PlanDuration observes how long a full plan computation takes.
	PlanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "playlater",
		Subsystem: "reconcile",
		Name:      "plan_duration_seconds",
		Help:      "Duration of reconciliation plan computation.",
		Buckets:   prometheus.DefBuckets,
	})

	// CatalogLookupErrors counts degraded catalog resolutions.
	CatalogLookupErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "playlater",
		Subsystem: "reconcile",
		Name:      "catalog_lookup_errors_total",
		Help:      "Catalog lookups that failed and degraded a candidate to unresolved.",
	})

	// EntriesCreated counts library entries persisted from plans.
	EntriesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "playlater",
		Subsystem: "reconcile",
		Name:      "entries_created_total",
		Help:      "Library entries created by applying reconciliation plans.",
	})
)

func init() {
	prometheus.MustRegister(ReconcileCandidates, PlanDuration, CatalogLookupErrors, EntriesCreated)
}

// Serve runs the /metrics endpoint until ctx is cancelled.
func Serve(ctx context.Context, port string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("port", port).Msg("Starting metrics server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
