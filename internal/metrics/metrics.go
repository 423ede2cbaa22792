// Package metrics exposes Prometheus instrumentation for the clan service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Operations counts clan operations by name and result code.
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clans",
		Name:      "operations_total",
		Help:      "Clan operations by operation name and wire result code.",
	}, []string{"operation", "result"})

	// OperationDuration tracks operation latency by name.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "clans",
		Name:      "operation_duration_seconds",
		Help:      "Clan operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// ClansCreated counts clans created since start, by surface.
	ClansCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clans",
		Name:      "created_total",
		Help:      "Clans created, by surface (game or admin).",
	}, []string{"surface"})

	// AnnouncementsSwept counts expired announcements purged by the sweeper.
	AnnouncementsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "clans",
		Name:      "announcements_swept_total",
		Help:      "Expired announcements purged by the background sweeper.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
