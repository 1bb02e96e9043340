package rating

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/rankerhq/ranker/pkg/http/errors"
)

// MatchSummaryReader serves read-only match projections with joined player
// names. Pure reporting queries, no rating logic attached.
type MatchSummaryReader interface {
	ListRecent(ctx context.Context, n int) ([]MatchSummary, error)
	ListByPlayer(ctx context.Context, player uuid.UUID, n int) ([]MatchSummary, error)
}

// PlayerRecord is the directory row exposed by the player endpoints.
type PlayerRecord struct {
	ID          uuid.UUID
	DisplayName string
	CreatedAt   time.Time
}

// PlayerDirectory reads registered player rows for the public directory.
type PlayerDirectory interface {
	ListPlayers(ctx context.Context) ([]PlayerRecord, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (PlayerRecord, error)
}

const (
	defaultRecentMatches = 10
	defaultTrendDays     = 7
)

// HTTPHandlers provides REST endpoints for matches and player statistics.
type HTTPHandlers struct {
	service   *Service
	summaries MatchSummaryReader
	players   PlayerDirectory
	logger    zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for rating endpoints.
func NewHTTPHandlers(service *Service, summaries MatchSummaryReader, players PlayerDirectory, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service:   service,
		summaries: summaries,
		players:   players,
		logger:    logger.With().Str("component", "rating_http").Logger(),
	}
}

type matchRequest struct {
	WinnerID     uuid.UUID  `json:"winner_id"`
	LoserID      uuid.UUID  `json:"loser_id"`
	WinningScore int        `json:"winning_score"`
	LosingScore  int        `json:"losing_score"`
	PlayedAt     *time.Time `json:"played_at,omitempty"`
	EventID      *uuid.UUID `json:"event_id,omitempty"`
	EventPhase   *int       `json:"event_phase,omitempty"`
}

// RecordMatch handles POST /v1/matches
func (h *HTTPHandlers) RecordMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	playedAt := time.Now().UTC()
	if req.PlayedAt != nil {
		playedAt = req.PlayedAt.UTC()
	}

	match, err := h.service.RecordMatch(r.Context(), Match{
		WinnerID:     req.WinnerID,
		LoserID:      req.LoserID,
		WinningScore: req.WinningScore,
		LosingScore:  req.LosingScore,
		PlayedAt:     playedAt,
		EventID:      req.EventID,
		EventPhase:   req.EventPhase,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidMatch) {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidMatch, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("record match failed")
		httperrors.RespondInternalError(w, "Failed to record match")
		return
	}

	h.respondJSON(w, http.StatusCreated, match)
}

// CorrectMatch handles PUT /v1/matches/{id}
func (h *HTTPHandlers) CorrectMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	matchID, ok := idFromPath(r.URL.Path, "/v1/matches/")
	if !ok {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid match id")
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.PlayedAt == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "played_at is required for corrections", "played_at")
		return
	}

	err := h.service.CorrectMatch(r.Context(), Match{
		ID:           matchID,
		WinnerID:     req.WinnerID,
		LoserID:      req.LoserID,
		WinningScore: req.WinningScore,
		LosingScore:  req.LosingScore,
		PlayedAt:     req.PlayedAt.UTC(),
		EventID:      req.EventID,
		EventPhase:   req.EventPhase,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMatch):
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidMatch, err.Error())
		case errors.Is(err, ErrMatchNotFound):
			httperrors.RespondNotFound(w, httperrors.ErrCodeMatchNotFound, "Match not found")
		default:
			h.logger.Error().Err(err).Str("match_id", matchID.String()).Msg("correct match failed")
			httperrors.RespondInternalError(w, "Failed to correct match")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"match_id": matchID.String(), "ratings_regenerated": true})
}

// RecentMatches handles GET /v1/matches/recent
func (h *HTTPHandlers) RecentMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	summaries, err := h.summaries.ListRecent(r.Context(), limitParam(r, defaultRecentMatches))
	if err != nil {
		h.logger.Error().Err(err).Msg("recent matches fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch matches")
		return
	}

	h.respondJSON(w, http.StatusOK, summaries)
}

// PlayerRating handles GET /v1/players/{id}/rating
func (h *HTTPHandlers) PlayerRating(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerFromPath(r.URL.Path, "/rating")
	if !ok {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid player id")
		return
	}

	current, err := h.service.PlayerRating(r.Context(), playerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("rating fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch rating")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id": playerID.String(),
		"rating":    current,
	})
}

// RatingHistory handles GET /v1/players/{id}/rating-history
func (h *HTTPHandlers) RatingHistory(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerFromPath(r.URL.Path, "/rating-history")
	if !ok {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid player id")
		return
	}

	history, err := h.service.RatingHistory(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, ErrNoMatches) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeNoMatches, "Player has no rating history")
			return
		}
		h.logger.Error().Err(err).Msg("rating history fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch rating history")
		return
	}

	h.respondJSON(w, http.StatusOK, history)
}

// PlayerMatches handles GET /v1/players/{id}/matches
func (h *HTTPHandlers) PlayerMatches(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerFromPath(r.URL.Path, "/matches")
	if !ok {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid player id")
		return
	}

	summaries, err := h.summaries.ListByPlayer(r.Context(), playerID, limitParam(r, defaultRecentMatches))
	if err != nil {
		h.logger.Error().Err(err).Msg("player match history fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch match history")
		return
	}

	h.respondJSON(w, http.StatusOK, summaries)
}

// PlayerStats handles GET /v1/players/{id}/stats
func (h *HTTPHandlers) PlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerFromPath(r.URL.Path, "/stats")
	if !ok {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid player id")
		return
	}

	stats, err := h.service.Stats(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, ErrNoMatches) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeNoMatches, "Player has no recorded matches")
			return
		}
		h.logger.Error().Err(err).Msg("player stats fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch stats")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

type playerView struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// Players handles GET /v1/players
func (h *HTTPHandlers) Players(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	records, err := h.players.ListPlayers(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("player list fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch players")
		return
	}

	ratings, err := h.service.CurrentRatings(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("rating snapshot fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch players")
		return
	}

	views := make([]playerView, 0, len(records))
	for _, p := range records {
		current, ok := ratings[p.ID]
		if !ok {
			current = h.service.DefaultRating()
		}
		views = append(views, playerView{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Rating:      current,
			CreatedAt:   p.CreatedAt,
		})
	}

	h.respondJSON(w, http.StatusOK, views)
}

// PlayerDetail handles GET /v1/players/{id}
func (h *HTTPHandlers) PlayerDetail(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/players/"), "/")
	playerID, err := uuid.Parse(raw)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid player id")
		return
	}

	record, err := h.players.GetPlayer(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodePlayerNotFound, "Player not found")
			return
		}
		h.logger.Error().Err(err).Msg("player fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch player")
		return
	}

	current, err := h.service.PlayerRating(r.Context(), playerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("rating fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch player")
		return
	}

	h.respondJSON(w, http.StatusOK, playerView{
		ID:          record.ID,
		DisplayName: record.DisplayName,
		Rating:      current,
		CreatedAt:   record.CreatedAt,
	})
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// idFromPath extracts a UUID segment after prefix, e.g. /v1/matches/{id}.
func idFromPath(path, prefix string) (uuid.UUID, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// playerFromPath extracts the {id} from /v1/players/{id}{suffix}.
func playerFromPath(path, suffix string) (uuid.UUID, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(path, "/v1/players/"), suffix)
	raw = strings.Trim(raw, "/")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func limitParam(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			return parsed
		}
	}
	return fallback
}
