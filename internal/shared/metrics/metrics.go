package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "workly_web"

// Metrics groups the Prometheus collectors of the edge server. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	AuthAttempts    *prometheus.CounterVec
	GuardDecisions  *prometheus.CounterVec
	SessionEvents   *prometheus.CounterVec
	ActiveStores    prometheus.Gauge
	BackendRequests *prometheus.HistogramVec
	HTTPRequests    *prometheus.HistogramVec
}

// New registers all collectors on reg. Passing prometheus.NewRegistry() keeps
// tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login and signup attempts by outcome.",
		}, []string{"operation", "outcome"}),
		GuardDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_guard_decisions_total",
			Help:      "Route guard decisions by action.",
		}, []string{"action"}),
		SessionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle events by type.",
		}, []string{"type"}),
		ActiveStores: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_stores_active",
			Help:      "Client session stores held in memory.",
		}),
		BackendRequests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of calls to the Workly API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
		HTTPRequests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of requests served by the edge.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// NewDefault registers the collectors on a fresh registry that also carries
// the Go runtime and process collectors.
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return New(reg)
}

func (m *Metrics) ObserveAuth(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveGuard(action string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveSessionEvent(eventType string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) SetActiveStores(n int) {
	if m == nil {
		return
	}
	m.ActiveStores.Set(float64(n))
}

// ObserveBackend records one Workly API call. status is 0 for transport failures.
func (m *Metrics) ObserveBackend(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Middleware records the latency of every request by matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.HTTPRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
