package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/barbershop-api/internal/models"
)

const metricsNamespace = "barbershop"

// durationTally accumulates a count and a total duration for averages in the admin summary.
type durationTally struct {
	count uint64
	nanos uint64
}

func (t *durationTally) add(d time.Duration) {
	atomic.AddUint64(&t.count, 1)
	atomic.AddUint64(&t.nanos, uint64(d.Nanoseconds()))
}

func (t *durationTally) load() (uint64, float64) {
	count := atomic.LoadUint64(&t.count)
	if count == 0 {
		return 0, 0
	}
	return count, float64(atomic.LoadUint64(&t.nanos)) / float64(count) / float64(time.Millisecond)
}

// MetricsService owns the Prometheus registry of the API and keeps running totals for the admin summary.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration  *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	dbDuration    *prometheus.HistogramVec
	cacheOps      *prometheus.HistogramVec
	availability  *prometheus.CounterVec
	notifications *prometheus.CounterVec

	requests durationTally
	queries  durationTally

	cacheHits            uint64
	cacheMisses          uint64
	availabilityDates    uint64
	availabilityFailures uint64
	notificationsSent    uint64
	notificationsDropped uint64
}

// NewMetricsService builds a private registry with the Go runtime collectors plus the API collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
	m.dbDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "store",
		Name:      "query_duration_seconds",
		Help:      "Store reads issued while composing availability.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"query"})
	m.cacheOps = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "operation_duration_seconds",
		Help:      "Availability cache operations by kind and result.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1},
	}, []string{"op", "result"})
	m.availability = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "availability",
		Name:      "dates_total",
		Help:      "Dates resolved by the availability pipeline by outcome.",
	}, []string{"outcome"})
	m.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "waitlist",
		Name:      "notifications_total",
		Help:      "Waitlist offer notifications by outcome.",
	}, []string{"outcome"})

	hitRatio := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "cache",
		Name:      "hit_ratio",
		Help:      "Share of availability cache lookups served from the cache.",
	}, m.cacheHitRatio)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpDuration, m.httpRequests, m.dbDuration, m.cacheOps,
		m.availability, m.notifications, hitRatio,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.httpRequests.WithLabelValues(method, route, code).Inc()
	m.requests.add(duration)
}

// RecordCacheOperation records a cache lookup; hit is false for misses and backend errors.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		atomic.AddUint64(&m.cacheHits, 1)
	} else {
		atomic.AddUint64(&m.cacheMisses, 1)
	}
	m.cacheOps.WithLabelValues("get", result).Observe(duration.Seconds())
}

// ObserveCacheWrite records a cache store.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues("set", "ok").Observe(duration.Seconds())
}

// ObserveDBQuery records a store read.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.queries.add(duration)
}

// RecordAvailabilityDate counts one date leaving the availability pipeline.
func (m *MetricsService) RecordAvailabilityDate(failed bool) {
	if m == nil {
		return
	}
	outcome := "composed"
	if failed {
		outcome = "failed"
		atomic.AddUint64(&m.availabilityFailures, 1)
	}
	atomic.AddUint64(&m.availabilityDates, 1)
	m.availability.WithLabelValues(outcome).Inc()
}

// RecordNotification counts a waitlist offer delivery attempt.
func (m *MetricsService) RecordNotification(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.notifications.WithLabelValues("error").Inc()
		return
	}
	atomic.AddUint64(&m.notificationsSent, 1)
	m.notifications.WithLabelValues("sent").Inc()
}

// RecordNotificationDropped counts an offer abandoned after its last retry.
func (m *MetricsService) RecordNotificationDropped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.notificationsDropped, 1)
	m.notifications.WithLabelValues("dropped").Inc()
}

func (m *MetricsService) cacheHitRatio() float64 {
	hits := atomic.LoadUint64(&m.cacheHits)
	total := hits + atomic.LoadUint64(&m.cacheMisses)
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Snapshot returns aggregated metrics for the admin summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests, avgRequestMs := m.requests.load()
	queries, avgQueryMs := m.queries.load()
	return models.SystemMetrics{
		CacheHitRatio:            m.cacheHitRatio(),
		CacheHits:                atomic.LoadUint64(&m.cacheHits),
		CacheMisses:              atomic.LoadUint64(&m.cacheMisses),
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             queries,
		AverageDBQueryDurationMs: avgQueryMs,
		AvailabilityDates:        atomic.LoadUint64(&m.availabilityDates),
		AvailabilityDateFailures: atomic.LoadUint64(&m.availabilityFailures),
		NotificationsSent:        atomic.LoadUint64(&m.notificationsSent),
		NotificationsDropped:     atomic.LoadUint64(&m.notificationsDropped),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
