package rating

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ranker_matches_recorded_total",
		Help: "Matches appended to the match log.",
	})

	fullRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ranker_rating_recomputes_total",
		Help: "Full from-scratch rating replays.",
	})
)
