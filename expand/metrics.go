package expand

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regkg_expand_gateway_queries_total",
		Help: "Total graph gateway queries issued during expansion.",
	})

	gatewayRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regkg_expand_gateway_retries_total",
		Help: "Total graph gateway retries after transient failures.",
	})

	sectionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regkg_expand_section_failures_total",
		Help: "Total section expansions that failed terminally.",
	})
)
