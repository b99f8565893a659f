package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(
		NewRegistry,
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
		NewLedgerMetrics,
		NewHTTPMetrics,
	),
)

const namespace = "repairdesk"

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// LedgerMetrics counts ledger commands. A nil *LedgerMetrics is a no-op.
type LedgerMetrics struct {
	ordersCreated   prometheus.Counter
	linesAttached   prometheus.Counter
	attachRejected  *prometheus.CounterVec
	rollupDuration  prometheus.Histogram
	rollupOrders    prometheus.Histogram
	purchasesByStat *prometheus.CounterVec
}

func NewLedgerMetrics(registerer prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created.",
		}),
		linesAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_service_lines_attached_total",
			Help:      "Service lines attached to orders with a captured price.",
		}),
		attachRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attach_rejected_total",
			Help:      "Attach batches rejected, by error kind.",
		}, []string{"kind"}),
		rollupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duty_rollup_duration_seconds",
			Help:      "Time spent loading and summing a duty rollup.",
			Buckets:   prometheus.DefBuckets,
		}),
		rollupOrders: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duty_rollup_orders",
			Help:      "Orders included in a duty rollup.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		purchasesByStat: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_recorded_total",
			Help:      "Purchases created, by initial status.",
		}, []string{"status"}),
	}
	registerer.MustRegister(
		m.ordersCreated,
		m.linesAttached,
		m.attachRejected,
		m.rollupDuration,
		m.rollupOrders,
		m.purchasesByStat,
	)
	return m
}

func (m *LedgerMetrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *LedgerMetrics) LinesAttached(n int) {
	if m == nil {
		return
	}
	m.linesAttached.Add(float64(n))
}

func (m *LedgerMetrics) AttachRejected(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "internal"
	}
	m.attachRejected.WithLabelValues(kind).Inc()
}

func (m *LedgerMetrics) ObserveRollup(orders int, took time.Duration) {
	if m == nil {
		return
	}
	m.rollupOrders.Observe(float64(orders))
	m.rollupDuration.Observe(took.Seconds())
}

func (m *LedgerMetrics) PurchaseRecorded(status string) {
	if m == nil {
		return
	}
	m.purchasesByStat.WithLabelValues(status).Inc()
}

// HTTPMetrics captures low-cardinality HTTP server metrics.
type HTTPMetrics struct {
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

func NewHTTPMetrics(registerer prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
	}
	registerer.MustRegister(m.requestDuration, m.inFlight)
	return m
}

// GinMiddleware records request duration and in-flight metrics.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		m.inFlight.Inc()
		start := time.Now()
		c.Next()
		m.inFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
