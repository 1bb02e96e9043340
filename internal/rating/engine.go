package rating

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Engine computes Elo-style ratings over a match sequence. It is pure
// in-memory state: no I/O, no clock, deterministic for a given input order.
type Engine struct {
	start   int
	k       int
	ratings map[uuid.UUID]int
}

// NewEngine creates an engine with every player at the starting rating.
func NewEngine(start, k int) *Engine {
	return &Engine{
		start:   start,
		k:       k,
		ratings: make(map[uuid.UUID]int),
	}
}

// NewEngineWithRatings seeds the engine from an existing snapshot so a new
// match can be applied incrementally instead of replaying the full log.
func NewEngineWithRatings(start, k int, ratings map[uuid.UUID]int) *Engine {
	e := NewEngine(start, k)
	for player, r := range ratings {
		e.ratings[player] = r
	}
	return e
}

// Rating returns the player's current rating, or the starting rating for a
// player the engine has not seen.
func (e *Engine) Rating(player uuid.UUID) int {
	if r, ok := e.ratings[player]; ok {
		return r
	}
	return e.start
}

// UpdateRatings applies one pairwise adjustment for a decided match.
// Expected scores come from the standard logistic curve; each delta is
// rounded half away from zero so incremental application and full replay
// stay bit-identical over any number of matches.
func (e *Engine) UpdateRatings(winner, loser uuid.UUID) {
	rw := float64(e.Rating(winner))
	rl := float64(e.Rating(loser))

	expWinner := 1.0 / (1.0 + math.Pow(10, (rl-rw)/400.0))
	expLoser := 1.0 - expWinner

	e.ratings[winner] = e.Rating(winner) + int(math.Round(float64(e.k)*(1.0-expWinner)))
	e.ratings[loser] = e.Rating(loser) + int(math.Round(float64(e.k)*(0.0-expLoser)))
}

// Snapshot returns a copy of all ratings for players seen so far.
func (e *Engine) Snapshot() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(e.ratings))
	for player, r := range e.ratings {
		out[player] = r
	}
	return out
}

// Replay feeds matches through the engine in chronological order and
// returns the final snapshot. Repeated replays of the same log yield
// identical results.
func (e *Engine) Replay(matches []Match) map[uuid.UUID]int {
	for _, m := range SortChronological(matches) {
		e.UpdateRatings(m.WinnerID, m.LoserID)
	}
	return e.Snapshot()
}

// History replays the log and records the player's rating after each of
// their matches, keeping at most one point per calendar date (the last
// match of the day wins). Points are returned in ascending date order.
func (e *Engine) History(player uuid.UUID, matches []Match) []HistoryPoint {
	var history []HistoryPoint

	for _, m := range SortChronological(matches) {
		e.UpdateRatings(m.WinnerID, m.LoserID)
		if m.WinnerID != player && m.LoserID != player {
			continue
		}

		point := HistoryPoint{
			PlayerID: player,
			Date:     dateOf(m.PlayedAt),
			Rating:   e.Rating(player),
		}

		// Chronological input means a same-day duplicate is always the
		// last element appended.
		if n := len(history); n > 0 && history[n-1].Date.Equal(point.Date) {
			history[n-1] = point
			continue
		}
		history = append(history, point)
	}

	return history
}

// SortChronological returns matches ordered by ascending play time without
// mutating the input. The sort is stable so same-timestamp matches keep
// their insertion order.
func SortChronological(matches []Match) []Match {
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlayedAt.Before(sorted[j].PlayedAt)
	})
	return sorted
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
