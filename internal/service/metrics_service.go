package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	assignmentsGenerated prometheus.Counter
	sessionsUnplaced     prometheus.Counter
	conflictsDetected    prometheus.Counter
	conflictsResolved    prometheus.Counter
	conflictsUnresolved  prometheus.Counter
	generationDuration   prometheus.Histogram
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

	assignmentsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_assignments_generated_total",
		Help: "Sessions the generator placed successfully",
	})

	sessionsUnplaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_sessions_unplaced_total",
		Help: "Sessions that exhausted the generator's trial budget",
	})

	conflictsDetected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_conflicts_detected_total",
		Help: "Conflicts recorded by detection passes",
	})

	conflictsResolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_conflicts_resolved_total",
		Help: "Conflicts repaired by the resolver",
	})

	conflictsUnresolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_conflicts_unresolved_total",
		Help: "Conflicts the resolver could not repair",
	})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Wall time of full generator runs",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, assignmentsGenerated,
		sessionsUnplaced, conflictsDetected, conflictsResolved, conflictsUnresolved,
		generationDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:             registry,
		handler:              handler,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		assignmentsGenerated: assignmentsGenerated,
		sessionsUnplaced:     sessionsUnplaced,
		conflictsDetected:    conflictsDetected,
		conflictsResolved:    conflictsResolved,
		conflictsUnresolved:  conflictsUnresolved,
		generationDuration:   generationDuration,
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

// ObserveGeneration records the outcome of one generator run.
func (m *MetricsService) ObserveGeneration(created, unplaced int, duration time.Duration) {
	if m == nil {
		return
	}
	m.assignmentsGenerated.Add(float64(created))
	m.sessionsUnplaced.Add(float64(unplaced))
	m.generationDuration.Observe(duration.Seconds())
}

// ObserveDetection records the outcome of one detection pass.
func (m *MetricsService) ObserveDetection(found int) {
	if m == nil {
		return
	}
	m.conflictsDetected.Add(float64(found))
}

// ObserveResolution records the outcome of one resolver pass.
func (m *MetricsService) ObserveResolution(resolved, unresolved int) {
	if m == nil {
		return
	}
	m.conflictsResolved.Add(float64(resolved))
	m.conflictsUnresolved.Add(float64(unresolved))
}
