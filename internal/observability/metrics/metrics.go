// Package metrics exposes Prometheus instrumentation for the lead pipeline.
// All methods are nil-safe so wiring metrics stays optional in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters the API emits.
type Metrics struct {
	leadsSubmitted *prometheus.CounterVec
	leadsRejected  *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

// New creates metrics registered against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		leadsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerage",
			Name:      "leads_submitted_total",
			Help:      "Leads accepted and persisted, by lead type.",
		}, []string{"type"}),
		leadsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerage",
			Name:      "leads_rejected_total",
			Help:      "Lead submissions turned away, by reason.",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerage",
			Name:      "notifications_total",
			Help:      "Notification dispatch outcomes.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.leadsSubmitted, m.leadsRejected, m.notifications)
	return m
}

// LeadSubmitted records an accepted lead of the given type.
func (m *Metrics) LeadSubmitted(leadType string) {
	if m == nil {
		return
	}
	m.leadsSubmitted.WithLabelValues(leadType).Inc()
}

// LeadRejected records a turned-away submission: "validation", "spam",
// "rate_limited" or "property_not_found".
func (m *Metrics) LeadRejected(reason string) {
	if m == nil {
		return
	}
	m.leadsRejected.WithLabelValues(reason).Inc()
}

// NotificationOutcome records a dispatch result: "sent", "failed", "skipped"
// or "dropped".
func (m *Metrics) NotificationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}
