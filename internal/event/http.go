package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/db/repository"
	httperrors "github.com/rankerhq/ranker/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for events.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for event endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "event_http").Logger(),
	}
}

// List handles GET /v1/events
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	summaries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("event list failed")
		httperrors.RespondInternalError(w, "Failed to fetch events")
		return
	}

	h.respondJSON(w, summaries)
}

// Get handles GET /v1/events/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/events/"), "/")
	id, err := uuid.Parse(raw)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid event id")
		return
	}

	summary, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeEventNotFound, "Event not found")
			return
		}
		h.logger.Error().Err(err).Str("event_id", id.String()).Msg("event fetch failed")
		httperrors.RespondInternalError(w, "Failed to fetch event")
		return
	}

	h.respondJSON(w, summary)
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
