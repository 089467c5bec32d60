package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "regkg_reconcile_decisions_total",
		Help: "Reconciliation decisions by outcome.",
	}, []string{"outcome"})

	recordsInvalidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regkg_reconcile_invalid_records_total",
		Help: "Input records rejected by validation.",
	})
)
