package wordle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/auth/jwt"
	httperrors "github.com/rankerhq/ranker/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for the daily puzzle.
type HTTPHandlers struct {
	service *Service
	results ResultsReader
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for wordle endpoints.
func NewHTTPHandlers(service *Service, results ResultsReader, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		results: results,
		logger:  logger.With().Str("component", "wordle_http").Logger(),
	}
}

type guessRequest struct {
	Guess string `json:"guess"`
}

// Guess handles POST /v1/wordle/guess
func (h *HTTPHandlers) Guess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	claims, ok := r.Context().Value("claims").(*jwt.Claims)
	if !ok || claims == nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	outcome, err := h.service.SubmitGuess(r.Context(), claims.PlayerID, req.Guess)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidGuess):
			httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidGuess, "Guess does not match the puzzle schema", "guess")
		case errors.Is(err, ErrAlreadyCompleted):
			httperrors.RespondConflict(w, httperrors.ErrCodeAlreadyCompletedToday, "Daily puzzle already completed")
		case errors.Is(err, ErrNoMoreGuesses):
			httperrors.RespondBadRequest(w, httperrors.ErrCodeNoMoreGuesses, "No more guesses allowed today")
		case errors.Is(err, ErrInconsistentState):
			httperrors.RespondConflict(w, httperrors.ErrCodeInconsistentState, "Session state repaired, please retry")
		default:
			h.logger.Error().Err(err).Msg("guess submission failed")
			httperrors.RespondInternalError(w, "Failed to submit guess")
		}
		return
	}

	h.respondJSON(w, http.StatusAccepted, outcome)
}

// Status handles GET /v1/wordle/status
func (h *HTTPHandlers) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	claims, ok := r.Context().Value("claims").(*jwt.Claims)
	if !ok || claims == nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	view, err := h.service.Status(r.Context(), claims.PlayerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("status fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch status")
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// Today handles GET /v1/wordle/today
func (h *HTTPHandlers) Today(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	board, err := h.results.ListByDate(r.Context(), h.service.today())
	if err != nil {
		h.logger.Error().Err(err).Msg("today board fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch today's board")
		return
	}

	h.respondJSON(w, http.StatusOK, board)
}

// Results handles GET /v1/wordle/results (the caller's own history)
func (h *HTTPHandlers) Results(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	claims, ok := r.Context().Value("claims").(*jwt.Claims)
	if !ok || claims == nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	results, err := h.results.ListByPlayer(r.Context(), claims.PlayerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("result history fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch results")
		return
	}

	h.respondJSON(w, http.StatusOK, results)
}

// Leaders handles GET /v1/wordle/leaders
func (h *HTTPHandlers) Leaders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	n := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 50 {
			n = parsed
		}
	}

	leaders, err := h.results.AverageLeaders(r.Context(), n)
	if err != nil {
		h.logger.Error().Err(err).Msg("leaders fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch leaders")
		return
	}

	h.respondJSON(w, http.StatusOK, leaders)
}

// WallOfShame handles GET /v1/wordle/shame
func (h *HTTPHandlers) WallOfShame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	failures, err := h.results.ListFailures(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failures fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch failures")
		return
	}

	h.respondJSON(w, http.StatusOK, failures)
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
