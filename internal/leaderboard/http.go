package leaderboard

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/rankerhq/ranker/pkg/http/errors"
)

// HTTPHandlers provides the leaderboard REST endpoint.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for leaderboard endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// Overview handles GET /v1/leaderboard
func (h *HTTPHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("leaderboard build failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeLeaderboardFetchFailed, "Failed to fetch leaderboard")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(overview); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode leaderboard response")
	}
}
