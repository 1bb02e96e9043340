package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeSubscribe = "subscribe"

	// Server -> Client
	TypeMatchRecorded     = "match_recorded"
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeWordleCompleted   = "wordle_completed"
	TypeError             = "error"
	TypePing              = "ping"
	TypePong              = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// MatchRecordedPayload announces a freshly recorded match and the rating
// deltas it produced.
type MatchRecordedPayload struct {
	MatchID      string `json:"match_id"`
	WinnerID     string `json:"winner_id"`
	LoserID      string `json:"loser_id"`
	Score        string `json:"score"`
	WinnerRating int    `json:"winner_rating"`
	LoserRating  int    `json:"loser_rating"`
}

// LeaderboardUpdatePayload carries the refreshed top standings.
type LeaderboardUpdatePayload struct {
	Leaders []LeaderboardEntry `json:"leaders"`
	MatchID string             `json:"match_id,omitempty"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	Trend       []int  `json:"trend,omitempty"`
}

// WordleCompletedPayload announces a finished daily puzzle (no answer leak:
// only sent after the player's result is final).
type WordleCompletedPayload struct {
	PlayerID string `json:"player_id"`
	Date     string `json:"date"`
	Guesses  int    `json:"guesses"`
	Fail     bool   `json:"fail"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
