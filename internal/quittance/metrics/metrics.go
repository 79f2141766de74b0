// Package metrics exposes Prometheus instruments for the settlement engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Generated     *prometheus.CounterVec
	Paid          *prometheus.CounterVec
	Cancellations prometheus.Counter
	AmountPaid    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Generated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sinistra_quittances_generated_total",
			Help: "Settlement receipts generated, by type",
		}, []string{"type"}),
		Paid: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sinistra_quittances_paid_total",
			Help: "Settlement receipts paid, by payment mode",
		}, []string{"mode"}),
		Cancellations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sinistra_quittance_cancellations_total",
			Help: "Settlement receipts cancelled before payment",
		}),
		AmountPaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sinistra_quittance_amount_paid_fcfa_total",
			Help: "Total amount paid out through quittances, in FCFA",
		}),
	}
}
