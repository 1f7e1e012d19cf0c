// Package metrics instruments the passfs request path. Since the whole
// point of passfs is measuring interception overhead, every protocol
// operation is counted and timed; the collector exports them in
// Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private Prometheus registry with the passfs
// operation metrics. A nil *Collector is valid and does nothing, so an
// unmeasured mount pays no instrumentation cost.
type Collector struct {
	registry *prometheus.Registry

	operations  *prometheus.CounterVec
	opErrors    *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	readBytes   prometheus.Counter
	openHandles prometheus.Gauge
}

// New creates a collector with all passfs metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "passfs",
			Name:      "operations_total",
			Help:      "Filesystem operations handled, by operation.",
		}, []string{"op"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "passfs",
			Name:      "operation_errors_total",
			Help:      "Filesystem operations that returned an error, by operation.",
		}, []string{"op"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "passfs",
			Name:      "operation_duration_seconds",
			Help:      "Latency of filesystem operations, by operation.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12), // 1us .. ~16s
		}, []string{"op"}),
		readBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "passfs",
			Name:      "read_bytes_total",
			Help:      "Bytes returned by read operations.",
		}),
		openHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "passfs",
			Name:      "open_handles",
			Help:      "Backing file handles currently open.",
		}),
	}

	c.registry.MustRegister(c.operations, c.opErrors, c.opDuration, c.readBytes, c.openHandles)
	return c
}

// Observe records one completed operation with its latency and outcome.
func (c *Collector) Observe(op string, start time.Time, err error) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(op).Inc()
	c.opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.opErrors.WithLabelValues(op).Inc()
	}
}

// AddReadBytes accounts bytes returned to the kernel by reads.
func (c *Collector) AddReadBytes(n int) {
	if c == nil {
		return
	}
	c.readBytes.Add(float64(n))
}

// HandleOpened tracks a newly opened backing handle.
func (c *Collector) HandleOpened() {
	if c == nil {
		return
	}
	c.openHandles.Inc()
}

// HandleReleased tracks a released backing handle.
func (c *Collector) HandleReleased() {
	if c == nil {
		return
	}
	c.openHandles.Dec()
}

// Handler returns the HTTP handler serving the metrics in Prometheus
// exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes the collector at addr under /metrics. It blocks like
// http.ListenAndServe; run it in a goroutine next to the FUSE serve
// loop.
func (c *Collector) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return http.ListenAndServe(addr, mux)
}
