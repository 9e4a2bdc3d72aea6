package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PayoutMetrics tracks the commission maturity backlog per broker.
type PayoutMetrics struct {
	payoutDue          *prometheus.GaugeVec
	payoutOnHold       *prometheus.GaugeVec
	payoutOldestDue    *prometheus.GaugeVec
	payoutPolls        prometheus.Counter
	payoutDisbursed    *prometheus.CounterVec
	payoutDisbursedAmt *prometheus.CounterVec
}

var (
	payoutMetricsOnce sync.Once
	payoutMetrics     *PayoutMetrics
)

func Payout() *PayoutMetrics {
	return PayoutWithConfig(Config{})
}

func PayoutWithConfig(cfg Config) *PayoutMetrics {
	payoutMetricsOnce.Do(func() {
		payoutMetrics = newPayoutMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return payoutMetrics
}

func ResetPayoutMetricsForTest() {
	payoutMetricsOnce = sync.Once{}
	payoutMetrics = nil
}

func newPayoutMetrics(registerer prometheus.Registerer, cfg Config) *PayoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "lienclock"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	payoutDue := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "lienclock_payout_due_cents",
			Help:        "Matured unpaid commission amount per broker.",
			ConstLabels: constLabels,
		},
		[]string{"broker_id"},
	)

	payoutOnHold := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "lienclock_payout_on_hold_cents",
			Help:        "Commission amount still inside the hold period per broker.",
			ConstLabels: constLabels,
		},
		[]string{"broker_id"},
	)

	payoutOldestDue := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "lienclock_payout_oldest_due_seconds",
			Help:        "Age of the oldest matured unpaid commission per broker.",
			ConstLabels: constLabels,
		},
		[]string{"broker_id"},
	)

	payoutPolls := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "lienclock_payout_backlog_polls_total",
			Help:        "Total completed payout backlog polls.",
			ConstLabels: constLabels,
		},
	)

	payoutDisbursed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "lienclock_payout_disbursed_total",
			Help:        "Total payouts disbursed.",
			ConstLabels: constLabels,
		},
		[]string{"broker_id"},
	)

	payoutDisbursedAmt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "lienclock_payout_disbursed_cents_total",
			Help:        "Total commission cents disbursed.",
			ConstLabels: constLabels,
		},
		[]string{"broker_id"},
	)

	registerer.MustRegister(
		payoutDue,
		payoutOnHold,
		payoutOldestDue,
		payoutPolls,
		payoutDisbursed,
		payoutDisbursedAmt,
	)

	return &PayoutMetrics{
		payoutDue:          payoutDue,
		payoutOnHold:       payoutOnHold,
		payoutOldestDue:    payoutOldestDue,
		payoutPolls:        payoutPolls,
		payoutDisbursed:    payoutDisbursed,
		payoutDisbursedAmt: payoutDisbursedAmt,
	}
}

// ResetBacklog clears per-broker gauges before a fresh poll so brokers whose
// backlog drained stop reporting stale values.
func (m *PayoutMetrics) ResetBacklog() {
	if m == nil {
		return
	}
	m.payoutDue.Reset()
	m.payoutOnHold.Reset()
	m.payoutOldestDue.Reset()
}

func (m *PayoutMetrics) ObserveBroker(brokerID string, dueCents, onHoldCents, oldestDueAgeMs int64) {
	if m == nil {
		return
	}
	m.payoutDue.WithLabelValues(brokerID).Set(float64(dueCents))
	m.payoutOnHold.WithLabelValues(brokerID).Set(float64(onHoldCents))
	m.payoutOldestDue.WithLabelValues(brokerID).Set(time.Duration(oldestDueAgeMs * int64(time.Millisecond)).Seconds())
}

func (m *PayoutMetrics) ObservePollCompleted() {
	if m == nil {
		return
	}
	m.payoutPolls.Inc()
}

func (m *PayoutMetrics) ObserveDisbursement(brokerID string, amountCents int64) {
	if m == nil {
		return
	}
	m.payoutDisbursed.WithLabelValues(brokerID).Inc()
	m.payoutDisbursedAmt.WithLabelValues(brokerID).Add(float64(amountCents))
}
