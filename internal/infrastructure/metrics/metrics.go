// Package metrics defines and registers the custom Prometheus metrics of the
// loan tracker. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from echoprometheus in the router.
// Recorder adapts the collectors to ports.Metrics for the core services.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "loans"

// ── Account metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "invalid"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// AccountsRegisteredTotal counts accounts created.
var AccountsRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_registered_total",
		Help:      "Total number of accounts registered.",
	},
)

// ── Client metrics ────────────────────────────────────────────────────────────

// ClientsCreatedTotal counts newly registered borrowers.
var ClientsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_created_total",
		Help:      "Total number of clients created.",
	},
)

// TermsAppliedTotal counts repayment plans chosen.
// Label:
//   - term_months: "3", "6", "9" or "12"
var TermsAppliedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "terms_applied_total",
		Help:      "Total number of loan terms applied, by term length.",
	},
	[]string{"term_months"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentsRecordedTotal counts payments committed to the ledger.
var PaymentsRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_recorded_total",
		Help:      "Total number of payments recorded.",
	},
)

// PaymentsRejectedTotal counts payments refused.
// Label:
//   - reason: "client_not_found", "invalid_amount", "amount_too_small" or
//     "exceeds_balance"
var PaymentsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_rejected_total",
		Help:      "Total number of payments rejected, by reason.",
	},
	[]string{"reason"},
)

// PaymentAmount observes the size of recorded payments.
var PaymentAmount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_amount",
		Help:      "Distribution of recorded payment amounts.",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	},
)

// Recorder feeds the collectors above.
type Recorder struct{}

func (Recorder) LoginAttempt(result string) {
	LoginAttemptsTotal.WithLabelValues(result).Inc()
}

func (Recorder) AccountRegistered() { AccountsRegisteredTotal.Inc() }

func (Recorder) ClientCreated() { ClientsCreatedTotal.Inc() }

func (Recorder) TermsApplied(termMonths int) {
	TermsAppliedTotal.WithLabelValues(strconv.Itoa(termMonths)).Inc()
}

func (Recorder) PaymentRecorded(amount decimal.Decimal) {
	PaymentsRecordedTotal.Inc()
	PaymentAmount.Observe(amount.InexactFloat64())
}

func (Recorder) PaymentRejected(reason string) {
	PaymentsRejectedTotal.WithLabelValues(reason).Inc()
}
