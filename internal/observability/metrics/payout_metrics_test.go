package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPayoutMetricsObserveBroker(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newPayoutMetrics(registry, Config{ServiceName: "lienclock", Environment: "test"})

	m.ObserveBroker("42", 5000, 2500, 90_000)
	m.ObservePollCompleted()

	if got := testutil.ToFloat64(m.payoutDue.WithLabelValues("42")); got != 5000 {
		t.Fatalf("due gauge = %v, want 5000", got)
	}
	if got := testutil.ToFloat64(m.payoutOnHold.WithLabelValues("42")); got != 2500 {
		t.Fatalf("on hold gauge = %v, want 2500", got)
	}
	if got := testutil.ToFloat64(m.payoutOldestDue.WithLabelValues("42")); got != 90 {
		t.Fatalf("oldest due gauge = %v seconds, want 90", got)
	}
	if got := testutil.ToFloat64(m.payoutPolls); got != 1 {
		t.Fatalf("poll counter = %v, want 1", got)
	}

	m.ResetBacklog()
	if got := testutil.ToFloat64(m.payoutDue.WithLabelValues("42")); got != 0 {
		t.Fatalf("due gauge after reset = %v, want 0", got)
	}
}

func TestPayoutMetricsNilReceiver(t *testing.T) {
	var m *PayoutMetrics
	m.ResetBacklog()
	m.ObserveBroker("42", 1, 2, 3)
	m.ObservePollCompleted()
	m.ObserveDisbursement("42", 100)
}
