package wordle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	guessesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ranker_wordle_guesses_total",
		Help: "Guesses accepted into daily puzzle sessions.",
	})

	completionsSolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ranker_wordle_completions_solved_total",
		Help: "Daily puzzles finished with the answer found.",
	})

	completionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ranker_wordle_completions_failed_total",
		Help: "Daily puzzles finished with guesses exhausted.",
	})
)
