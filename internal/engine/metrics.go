package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trovehq/trove/internal/model"
)

var (
	metricPairsCompared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trove",
		Subsystem: "dedup",
		Name:      "pairs_compared_total",
		Help:      "Number of record pairs scored by the duplicate detector.",
	})
	metricDuplicatesFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trove",
		Subsystem: "dedup",
		Name:      "duplicates_found_total",
		Help:      "Number of pairs classified as duplicates.",
	})
	metricGroupsConsolidated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trove",
		Subsystem: "dedup",
		Name:      "groups_consolidated_total",
		Help:      "Number of duplicate groups consolidated and persisted.",
	})
	metricRecordsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trove",
		Subsystem: "dedup",
		Name:      "records_archived_total",
		Help:      "Number of duplicate records archived into a primary.",
	})
	metricConsolidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trove",
		Subsystem: "dedup",
		Name:      "consolidation_failures_total",
		Help:      "Number of groups skipped because archiving or logging failed.",
	})
)

// observeVerdict feeds detector verdicts into the scan counters.
func observeVerdict(verdict model.DuplicateVerdict) {
	metricPairsCompared.Inc()
	if verdict.IsDuplicate {
		metricDuplicatesFound.Inc()
	}
}
