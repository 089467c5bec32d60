package provenance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsChangedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regkg_provenance_records_changed_total",
		Help: "Total recorded subjects whose content hash changed.",
	})

	recordsUnchangedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regkg_provenance_records_unchanged_total",
		Help: "Total recorded subjects skipped because the content hash was unchanged.",
	})
)
