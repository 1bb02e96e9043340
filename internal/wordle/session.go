package wordle

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActiveSession is a player's in-progress daily attempt. Guesses are stored
// as one concatenated fixed-width string, so guess count falls out of the
// history length. At most one exists per player.
type ActiveSession struct {
	ID           uuid.UUID
	PlayerID     uuid.UUID
	Word         string
	GuessHistory string
	StartTime    time.Time
}

// Guesses returns how many guesses the session holds.
func (s ActiveSession) Guesses() int {
	if len(s.Word) == 0 {
		return 0
	}
	return len(s.GuessHistory) / len(s.Word)
}

// LastGuess returns the most recent guess, or "" for an empty session.
func (s ActiveSession) LastGuess() string {
	n := s.Guesses()
	if n == 0 {
		return ""
	}
	return s.GuessHistory[(n-1)*len(s.Word):]
}

// Solved reports whether the latest guess matches the answer exactly.
func (s ActiveSession) Solved() bool {
	return s.Guesses() > 0 && s.LastGuess() == s.Word
}

// Date is the calendar date the session belongs to, derived from its start.
func (s ActiveSession) Date() time.Time {
	y, m, d := s.StartTime.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyResult is the immutable record of a finished attempt. Exactly one
// per player per date; created only by finalizing an active session.
type DailyResult struct {
	ID       uuid.UUID     `json:"id"`
	PlayerID uuid.UUID     `json:"player_id"`
	Date     time.Time     `json:"date"`
	Word     string        `json:"word"`
	Guesses  int           `json:"guesses"`
	Elapsed  time.Duration `json:"elapsed"`
	Fail     bool          `json:"fail"`
}

// SessionView is the client-facing projection of a session. The answer is
// masked until the attempt is over.
type SessionView struct {
	Word         string `json:"word"`
	GuessHistory string `json:"guess_history"`
	Guesses      int    `json:"guesses"`
	MaxGuesses   int    `json:"max_guesses"`
	Completed    bool   `json:"completed"`
}

func maskWord(length int) string {
	return strings.Repeat("?", length)
}
