package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorObserve(t *testing.T) {
	c := NewCollector("carebook", prometheus.NewRegistry())

	c.ObserveBooking("confirmed")
	c.ObserveBooking("confirmed")
	c.ObserveStatusUpdate("completed", "applied")
	c.ObserveDataCall("appointments", nil, 20*time.Millisecond)
	c.ObserveDataCall("appointments", errors.New("boom"), time.Millisecond)
	c.ObserveStale("dashboard")
	c.ObserveEvent("appointment.booked", nil)
	c.ObserveAudit(false)
	c.ObserveAudit(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.BookingsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StatusUpdatesTotal.WithLabelValues("completed", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StaleResponsesTotal.WithLabelValues("dashboard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AuditEntriesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AuditBufferDropped))
}

func TestCollectorNilSafe(t *testing.T) {
	var c *Collector
	c.ObserveBooking("rejected")
	c.ObserveStatusUpdate("pending", "failed")
	c.ObserveDataCall("patients", nil, time.Second)
	c.ObserveStale("directory")
	c.ObserveEvent("appointment.booked", nil)
	c.ObserveAudit(true)
}
