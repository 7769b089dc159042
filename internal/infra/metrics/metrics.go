// Package metrics owns the Prometheus collectors of the service. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "artmarket"

const OutcomeOK = "ok"

type Metrics struct {
	registry     *prometheus.Registry
	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	walletOps    *prometheus.CounterVec
	walletTime   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		walletOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_operations_total",
			Help: "Wallet operations by operation and outcome kind.",
		}, []string{"op", "outcome"}),
		walletTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wallet_operation_duration_seconds",
			Help:    "Duration of wallet operations including lock waits.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 13), // 1ms to ~8s
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.walletOps,
		m.walletTime,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveWallet records one wallet operation. The outcome label is "ok" or
// the error kind.
func (m *Metrics) ObserveWallet(op string, err error, d time.Duration) {
	if m == nil {
		return
	}

	m.walletOps.WithLabelValues(op, Outcome(err)).Inc()
	m.walletTime.WithLabelValues(op).Observe(d.Seconds())
}

// InFlight tracks a request; call the returned func when it is done.
func (m *Metrics) InFlight() func() {
	if m == nil {
		return func() {}
	}

	m.httpInFlight.Inc()

	return m.httpInFlight.Dec
}

// ObserveHTTP records a finished request. route should be the router
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}

	if route == "" {
		route = "unmatched"
	}

	method = strings.ToUpper(method)

	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}

	return string(apperr.KindOf(err))
}
