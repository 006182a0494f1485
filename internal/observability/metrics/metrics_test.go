package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.LeadSubmitted("Contact")
	m.LeadSubmitted("Contact")
	m.LeadRejected("spam")
	m.NotificationOutcome("sent")

	if got := testutil.ToFloat64(m.leadsSubmitted.WithLabelValues("Contact")); got != 2 {
		t.Errorf("leads_submitted_total{type=Contact} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.leadsRejected.WithLabelValues("spam")); got != 1 {
		t.Errorf("leads_rejected_total{reason=spam} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("sent")); got != 1 {
		t.Errorf("notifications_total{outcome=sent} = %v, want 1", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.LeadSubmitted("Contact")
	m.LeadRejected("validation")
	m.NotificationOutcome("failed")
}
