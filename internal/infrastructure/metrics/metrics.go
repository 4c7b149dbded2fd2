package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeReconciled      = "reconciled"
	OutcomeUnverified      = "unverified"
	OutcomeRejected        = "rejected"
	OutcomeIgnored         = "ignored"
	OutcomeReconcileFailed = "reconcile_failed"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_notifications_total",
		Help: "Midtrans notifications received, by outcome.",
	},
	[]string{"outcome"},
)

func RecordNotification(outcome string) {
	notificationsTotal.WithLabelValues(outcome).Inc()
}
