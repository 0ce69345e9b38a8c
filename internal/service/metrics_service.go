package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/plenary-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	votesCast       *prometheus.CounterVec
	voteRejections  *prometheus.CounterVec
	refreshTotal    prometheus.Counter
	recordCount     prometheus.Gauge
	quarantined     prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	votesCast := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_cast_total",
		Help: "Total ballots accepted, by choice",
	}, []string{"choice"})

	voteRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vote_rejections_total",
		Help: "Total ballots rejected, by reason code",
	}, []string{"reason"})

	refreshTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "projection_refresh_total",
		Help: "Total state projection rebuilds",
	})

	recordCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_records",
		Help: "Records loaded by the latest projection",
	})

	quarantined := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_quarantined_records",
		Help: "Records skipped by the latest projection as malformed",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, votesCast, voteRejections, refreshTotal, recordCount, quarantined, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		votesCast:       votesCast,
		voteRejections:  voteRejections,
		refreshTotal:    refreshTotal,
		recordCount:     recordCount,
		quarantined:     quarantined,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordVoteCast counts an accepted ballot by choice.
func (m *MetricsService) RecordVoteCast(choice models.VoteChoice) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(string(choice)).Inc()
}

// RecordVoteRejected counts a rejected ballot by the error code returned.
func (m *MetricsService) RecordVoteRejected(reason string) {
	if m == nil {
		return
	}
	m.voteRejections.WithLabelValues(reason).Inc()
}

// RecordProjectionRefresh tracks a projection rebuild.
func (m *MetricsService) RecordProjectionRefresh(records, quarantined int) {
	if m == nil {
		return
	}
	m.refreshTotal.Inc()
	m.recordCount.Set(float64(records))
	m.quarantined.Set(float64(quarantined))
}
