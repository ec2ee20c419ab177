// Package metrics collects and exposes Prometheus metrics for the credit API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts coordinator outcomes. Compensation failures get their own
// counter because they are the one case an operator has to reconcile by hand.
type Collector struct {
	charges              *prometheus.CounterVec
	topups               prometheus.Counter
	debitConflicts       prometheus.Counter
	compensationFailures prometheus.Counter
}

// NewCollector registers all metrics on reg and returns the collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		charges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webapp_charges_total",
			Help: "Charge attempts by outcome.",
		}, []string{"outcome"}),
		topups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webapp_topups_total",
			Help: "Successful balance top-ups.",
		}),
		debitConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webapp_debit_conflicts_total",
			Help: "Conditional balance writes rejected due to concurrent modification.",
		}),
		compensationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webapp_compensation_failures_total",
			Help: "Failed compensating writes; the ledger needs manual reconciliation.",
		}),
	}

	reg.MustRegister(
		c.charges,
		c.topups,
		c.debitConflicts,
		c.compensationFailures,
	)

	return c
}

func (c *Collector) RecordCharge(outcome string) {
	c.charges.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordTopUp() {
	c.topups.Inc()
}

func (c *Collector) RecordDebitConflict() {
	c.debitConflicts.Inc()
}

func (c *Collector) RecordCompensationFailure() {
	c.compensationFailures.Inc()
}

// Handler returns the scrape endpoint for reg.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
