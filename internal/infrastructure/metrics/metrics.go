package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tradeledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Unit of work metrics
	UnitOfWorkTotal    *prometheus.CounterVec
	UnitOfWorkDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Notification metrics
	Notifications *prometheus.CounterVec

	// Edge metrics
	RateLimitHits      prometheus.Counter
	IdempotencyReplays prometheus.Counter
	AuthFailures       *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UnitOfWorkTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unit_of_work_total",
				Help:      "Total units of work by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UnitOfWorkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "unit_of_work_duration_seconds",
				Help:      "Duration of units of work including retries",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Post-commit notifications by event type and outcome",
			},
			[]string{"event_type", "outcome"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		IdempotencyReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotency_replays_total",
			Help:      "Responses served from the idempotency store",
		}),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Rejected bearer tokens by reason",
			},
			[]string{"reason"},
		),
	}
}

// ObserveUnitOfWork implements usecase.Observer.
func (m *Metrics) ObserveUnitOfWork(operation, outcome string, duration time.Duration) {
	m.UnitOfWorkTotal.WithLabelValues(operation, outcome).Inc()
	m.UnitOfWorkDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveNotification counts one notification outcome.
func (m *Metrics) ObserveNotification(eventType, outcome string) {
	m.Notifications.WithLabelValues(eventType, outcome).Inc()
}

// PoolStats reports connection pool gauges.
type PoolStats func() (acquired, idle, total int32)

// RegisterPoolStats exposes connection pool gauges read on every scrape.
func RegisterPoolStats(reg prometheus.Registerer, stats PoolStats) {
	factory := promauto.With(reg)

	gauge := func(name, help string, pick func(acquired, idle, total int32) int32) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(pick(stats()))
		})
	}

	gauge("acquired_connections", "Connections currently in use", func(a, _, _ int32) int32 { return a })
	gauge("idle_connections", "Idle connections", func(_, i, _ int32) int32 { return i })
	gauge("total_connections", "Open connections", func(_, _, t int32) int32 { return t })
}
