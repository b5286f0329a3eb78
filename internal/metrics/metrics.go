// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ShortlistChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlist_changes_total",
			Help: "Total number of shortlist additions and removals",
		},
		[]string{"course", "action"},
	)

	RankingMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_moves_total",
			Help: "Total number of ranking moves by outcome",
		},
		[]string{"course", "move", "outcome"},
	)

	AggregateTopScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aggregate_top_score",
			Help: "Highest aggregate score on the last computed chart",
		},
		[]string{"course"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
