// Package metrics exposes Prometheus instruments for the claim lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Declared       *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	Rejections     prometheus.Counter
	Closed         prometheus.Counter
	SettlementDays prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Declared: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sinistra_claims_declared_total",
			Help: "Claims declared, by claim type",
		}, []string{"type"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sinistra_claim_transitions_total",
			Help: "Lifecycle transitions applied, by target status",
		}, []string{"to"}),
		Rejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sinistra_claim_rejections_total",
			Help: "Claims rejected",
		}),
		Closed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sinistra_claims_closed_total",
			Help: "Claims closed and archived",
		}),
		SettlementDays: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sinistra_claim_settlement_days",
			Help:    "Days from payment approval to full settlement",
			Buckets: []float64{1, 2, 3, 5, 7, 10, 15, 30},
		}),
	}
}
