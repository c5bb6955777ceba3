package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "picabord"

var _ Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	scanDuration    prom.Histogram
	scannedFiles    prom.Counter
	skippedFiles    *prom.CounterVec
	writes          *prom.CounterVec
	requests        *prom.CounterVec
	requestDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		scanDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a full content directory scan",
			Buckets:   prom.DefBuckets,
		}),
		scannedFiles: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "scanned_files_total",
			Help:      "Post files read during directory scans",
		}),
		skippedFiles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "skipped_files_total",
			Help:      "Post files left out of listings, by reason",
		}, []string{"reason"}),
		writes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "writes_total",
			Help:      "Create, update and delete operations by result",
		}, []string{"op", "result"}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(pr.scanDuration, pr.scannedFiles, pr.skippedFiles, pr.writes, pr.requests, pr.requestDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveScan(d time.Duration, files int) {
	if p == nil {
		return
	}
	p.scanDuration.Observe(d.Seconds())
	p.scannedFiles.Add(float64(files))
}

func (p *PrometheusRecorder) IncSkipped(reason string) {
	if p == nil {
		return
	}
	p.skippedFiles.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncWrite(op, result string) {
	if p == nil {
		return
	}
	p.writes.WithLabelValues(op, result).Inc()
}

func (p *PrometheusRecorder) ObserveRequest(method, route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler that serves the metrics in reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
