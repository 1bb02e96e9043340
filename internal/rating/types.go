package rating

import (
	"time"

	"github.com/google/uuid"
)

// Match is one completed game. Immutable once recorded; corrections go
// through Service.CorrectMatch which replays the whole log.
type Match struct {
	ID           uuid.UUID  `json:"id"`
	WinnerID     uuid.UUID  `json:"winner_id"`
	LoserID      uuid.UUID  `json:"loser_id"`
	WinningScore int        `json:"winning_score"`
	LosingScore  int        `json:"losing_score"`
	PlayedAt     time.Time  `json:"played_at"`
	EventID      *uuid.UUID `json:"event_id,omitempty"`
	EventPhase   *int       `json:"event_phase,omitempty"`
}

// HistoryPoint is the rating a player held at the end of a calendar date.
// Derived data only, never persisted.
type HistoryPoint struct {
	PlayerID uuid.UUID `json:"player_id"`
	Date     time.Time `json:"date"`
	Rating   int       `json:"rating"`
}

// PlayerStats summarizes a player's match record.
type PlayerStats struct {
	PlayerID          uuid.UUID `json:"player_id"`
	Wins              int       `json:"wins"`
	Losses            int       `json:"losses"`
	GamesPlayed       int       `json:"games_played"`
	WinPercent        float64   `json:"win_percent"`
	PointsWon         int       `json:"points_won"`
	PointsLost        int       `json:"points_lost"`
	PointDifferential int       `json:"point_differential"`
	BestRating        int       `json:"best_rating"`
	BestRatingDate    time.Time `json:"best_rating_date"`
}

// MatchSummary is a match seen from one player's perspective.
type MatchSummary struct {
	MatchID      uuid.UUID `json:"match_id"`
	PlayedAt     time.Time `json:"played_at"`
	OpponentID   uuid.UUID `json:"opponent_id"`
	OpponentName string    `json:"opponent_name"`
	Won          bool      `json:"won"`
	Score        string    `json:"score"`
}
