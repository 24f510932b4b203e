package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	notifySent      prometheus.Counter
	notifyFailed    prometheus.Counter
	notifyDropped   prometheus.Counter
	sessionsIssued  prometheus.Counter
	sessionsRevoked prometheus.Counter
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

	notifySent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meeting_notifications_sent_total",
		Help: "Total meeting notification emails delivered",
	})

	notifyFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meeting_notifications_failed_total",
		Help: "Total meeting notification deliveries that failed",
	})

	notifyDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meeting_notifications_dropped_total",
		Help: "Total meeting notifications dropped before enqueue",
	})

	sessionsIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_issued_total",
		Help: "Total sessions issued at login",
	})

	sessionsRevoked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_revoked_total",
		Help: "Total sessions revoked",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, notifySent, notifyFailed, notifyDropped, sessionsIssued, sessionsRevoked, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		notifySent:      notifySent,
		notifyFailed:    notifyFailed,
		notifyDropped:   notifyDropped,
		sessionsIssued:  sessionsIssued,
		sessionsRevoked: sessionsRevoked,
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

// NotificationSent counts a delivered meeting notification.
func (m *MetricsService) NotificationSent() {
	if m == nil {
		return
	}
	m.notifySent.Inc()
}

// NotificationFailed counts a failed delivery attempt.
func (m *MetricsService) NotificationFailed() {
	if m == nil {
		return
	}
	m.notifyFailed.Inc()
}

// NotificationDropped counts a notification dropped before enqueue.
func (m *MetricsService) NotificationDropped() {
	if m == nil {
		return
	}
	m.notifyDropped.Inc()
}

// SessionIssued counts a successful login.
func (m *MetricsService) SessionIssued() {
	if m == nil {
		return
	}
	m.sessionsIssued.Inc()
}

// SessionRevoked counts a logout or forced revocation.
func (m *MetricsService) SessionRevoked() {
	if m == nil {
		return
	}
	m.sessionsRevoked.Inc()
}
