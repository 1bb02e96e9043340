package wordle

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RankedResult is a daily result joined with the player's name and its
// place on the day's board (ordered by fail, guesses, elapsed time).
type RankedResult struct {
	Rank        int           `json:"rank"`
	PlayerID    uuid.UUID     `json:"player_id"`
	DisplayName string        `json:"display_name"`
	Date        time.Time     `json:"date"`
	Guesses     int           `json:"guesses"`
	Elapsed     time.Duration `json:"elapsed"`
	Fail        bool          `json:"fail"`
}

// AverageEntry is a player's long-run puzzle average.
type AverageEntry struct {
	PlayerID    uuid.UUID     `json:"player_id"`
	DisplayName string        `json:"display_name"`
	AvgGuesses  float64       `json:"avg_guesses"`
	AvgElapsed  time.Duration `json:"avg_elapsed"`
	Played      int           `json:"played"`
}

// AverageLeaders holds the two leader boards the puzzle exposes.
type AverageLeaders struct {
	BestByGuesses []AverageEntry `json:"best_by_guesses"`
	BestByTime    []AverageEntry `json:"best_by_time"`
}

// ResultsReader serves read-only reporting projections over daily results.
type ResultsReader interface {
	ListByDate(ctx context.Context, date time.Time) ([]RankedResult, error)
	ListByPlayer(ctx context.Context, player uuid.UUID) ([]DailyResult, error)
	ListFailures(ctx context.Context) ([]RankedResult, error)
	AverageLeaders(ctx context.Context, n int) (AverageLeaders, error)
}
