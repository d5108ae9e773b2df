// Package metrics exposes Prometheus collectors for HTTP traffic and the match lifecycle.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pooltm"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	matchesCreated     prometheus.Counter
	matchesUpdated     prometheus.Counter
	matchesDeleted     prometheus.Counter
	scheduleConflicts  *prometheus.CounterVec
	rankingAdjustments prometheus.Counter
}

// New registers every collector on a private registry, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		matchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Matches successfully scheduled.",
		}),
		matchesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_updated_total",
			Help:      "Matches successfully updated.",
		}),
		matchesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_deleted_total",
			Help:      "Matches deleted.",
		}),
		scheduleConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_conflicts_total",
			Help:      "Match writes rejected because a player was already booked.",
		}, []string{"operation"}),
		rankingAdjustments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_adjustments_total",
			Help:      "Match results applied to player rankings.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.matchesCreated,
		m.matchesUpdated,
		m.matchesDeleted,
		m.scheduleConflicts,
		m.rankingAdjustments,
	)
	return m
}

func (m *Metrics) MatchCreated()    { m.matchesCreated.Inc() }
func (m *Metrics) MatchUpdated()    { m.matchesUpdated.Inc() }
func (m *Metrics) MatchDeleted()    { m.matchesDeleted.Inc() }
func (m *Metrics) RankingAdjusted() { m.rankingAdjustments.Inc() }

func (m *Metrics) ScheduleConflict(operation string) {
	m.scheduleConflicts.WithLabelValues(operation).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency. Routes are labelled by their
// chi pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snoop := httpsnoop.CaptureMetrics(next, w, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(snoop.Code)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(snoop.Duration.Seconds())
	})
}
