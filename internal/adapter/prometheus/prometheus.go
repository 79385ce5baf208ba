package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusAdapter struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeWrites     *prometheus.CounterVec
	storeDegraded   *prometheus.CounterVec
}

// NewPrometheusAdapter registers collectors on a private registry so that
// several adapters can live in one process.
func NewPrometheusAdapter() *PrometheusAdapter {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &PrometheusAdapter{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridewise_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ridewise_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridewise_store_writes_total",
			Help: "Document writes by backend and result",
		}, []string{"backend", "result"}),
		storeDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridewise_store_degraded_total",
			Help: "Times the document store fell back to memory",
		}, []string{"backend"}),
	}
	registry.MustRegister(p.requestsTotal, p.requestDuration, p.storeWrites, p.storeDegraded)
	return p
}

func (p *PrometheusAdapter) RecordMetrics(c *gin.Context, start time.Time) {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	method := c.Request.Method
	status := strconv.Itoa(c.Writer.Status())

	p.requestsTotal.WithLabelValues(method, route, status).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func (p *PrometheusAdapter) RecordStoreWrite(backend string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.storeWrites.WithLabelValues(backend, result).Inc()
}

func (p *PrometheusAdapter) RecordDegraded(backend string) {
	p.storeDegraded.WithLabelValues(backend).Inc()
}

func (p *PrometheusAdapter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
