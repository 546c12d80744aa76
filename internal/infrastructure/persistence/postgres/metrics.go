package postgres

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCommit      = "commit"
	outcomeRollback    = "rollback"
	outcomeBeginError  = "begin_error"
	outcomeCommitError = "commit_error"
)

var (
	uowTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storehub",
			Subsystem: "uow",
			Name:      "transactions_total",
			Help:      "Total number of units of work by outcome",
		},
		[]string{"outcome"},
	)

	uowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storehub",
			Subsystem: "uow",
			Name:      "duration_seconds",
			Help:      "Unit of work duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	hookFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storehub",
			Subsystem: "uow",
			Name:      "after_commit_hook_failures_total",
			Help:      "Total number of after-commit hooks that panicked",
		},
	)
)

func observe(outcome string, started time.Time) {
	uowTotal.WithLabelValues(outcome).Inc()
	uowDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}
