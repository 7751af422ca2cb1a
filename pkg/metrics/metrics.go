package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	BookingsTotal      *prometheus.CounterVec
	StatusUpdatesTotal *prometheus.CounterVec

	DataServiceDuration *prometheus.HistogramVec
	StaleResponsesTotal *prometheus.CounterVec

	EventsPublishedTotal *prometheus.CounterVec

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
}

// NewCollector registers the service metrics on reg, or on the default
// registerer when reg is nil.
func NewCollector(serviceName string, reg prometheus.Registerer) *Collector {
	c := &Collector{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		BookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by result (confirmed, rejected, failed).",
		}, []string{"result"}),

		StatusUpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "dashboard",
			Name:      "status_updates_total",
			Help:      "Appointment status updates by requested status and result.",
		}, []string{"status", "result"}),

		DataServiceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "dataservice",
			Name:      "call_duration_seconds",
			Help:      "Data service call latency by operation and outcome.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.3, 0.5, 1.0, 2.5},
		}, []string{"operation", "outcome"}),

		StaleResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "dataservice",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request was issued for the same view.",
		}, []string{"view"}),

		EventsPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Appointment events published by type and result.",
		}, []string{"type", "result"}),

		AuditEntriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		c.RequestsTotal, c.RequestDuration, c.InFlightGauge,
		c.BookingsTotal, c.StatusUpdatesTotal,
		c.DataServiceDuration, c.StaleResponsesTotal,
		c.EventsPublishedTotal,
		c.AuditEntriesTotal, c.AuditBufferDropped,
	)
	return c
}

func (c *Collector) ObserveBooking(result string) {
	if c == nil {
		return
	}
	c.BookingsTotal.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveStatusUpdate(status, result string) {
	if c == nil {
		return
	}
	c.StatusUpdatesTotal.WithLabelValues(status, result).Inc()
}

func (c *Collector) ObserveDataCall(operation string, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.DataServiceDuration.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveStale(view string) {
	if c == nil {
		return
	}
	c.StaleResponsesTotal.WithLabelValues(view).Inc()
}

func (c *Collector) ObserveEvent(eventType string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.EventsPublishedTotal.WithLabelValues(eventType, result).Inc()
}

func (c *Collector) ObserveAudit(dropped bool) {
	if c == nil {
		return
	}
	if dropped {
		c.AuditBufferDropped.Inc()
		return
	}
	c.AuditEntriesTotal.Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
