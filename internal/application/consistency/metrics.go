package consistency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	duplicateRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storehub",
			Name:      "duplicate_rejections_total",
			Help:      "Total number of writes rejected by the duplicate check",
		},
		[]string{"kind"},
	)

	unboundRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storehub",
			Name:      "unbound_rows_total",
			Help:      "Total number of dependent rows deleted or detached before a parent delete",
		},
		[]string{"parent", "related", "mode"},
	)
)
