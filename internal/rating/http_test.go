package rating

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	records []PlayerRecord
}

func (s *stubDirectory) ListPlayers(_ context.Context) ([]PlayerRecord, error) {
	return s.records, nil
}

func (s *stubDirectory) GetPlayer(_ context.Context, id uuid.UUID) (PlayerRecord, error) {
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return PlayerRecord{}, ErrPlayerNotFound
}

func newTestHandlers(t *testing.T) (*HTTPHandlers, *Service, *stubDirectory) {
	t.Helper()
	svc, _, _, _ := newTestService(t)
	dir := &stubDirectory{}
	return NewHTTPHandlers(svc, nil, dir, zerolog.Nop()), svc, dir
}

func TestPlayersListIncludesRatings(t *testing.T) {
	handlers, svc, dir := newTestHandlers(t)
	dir.records = []PlayerRecord{
		{ID: playerA, DisplayName: "alice", CreatedAt: time.Now()},
		{ID: playerB, DisplayName: "bob", CreatedAt: time.Now()},
		{ID: playerC, DisplayName: "carol", CreatedAt: time.Now()},
	}

	_, err := svc.RecordMatch(context.Background(), matchAt(playerA, playerB, time.Now()))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handlers.Players(rec, httptest.NewRequest(http.MethodGet, "/v1/players", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var views []struct {
		ID     uuid.UUID `json:"id"`
		Rating int       `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 3)

	byID := map[uuid.UUID]int{}
	for _, v := range views {
		byID[v.ID] = v.Rating
	}
	assert.Equal(t, 1016, byID[playerA])
	assert.Equal(t, 984, byID[playerB])
	// Never played: falls back to the starting rating.
	assert.Equal(t, 1000, byID[playerC])
}

func TestPlayersListRejectsNonGet(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	handlers.Players(rec, httptest.NewRequest(http.MethodPost, "/v1/players", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPlayerDetailReturnsRating(t *testing.T) {
	handlers, svc, dir := newTestHandlers(t)
	dir.records = []PlayerRecord{{ID: playerA, DisplayName: "alice", CreatedAt: time.Now()}}

	_, err := svc.RecordMatch(context.Background(), matchAt(playerA, playerB, time.Now()))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handlers.PlayerDetail(rec, httptest.NewRequest(http.MethodGet, "/v1/players/"+playerA.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		DisplayName string `json:"display_name"`
		Rating      int    `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "alice", view.DisplayName)
	assert.Equal(t, 1016, view.Rating)
}

func TestPlayerDetailUnknownPlayer(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	handlers.PlayerDetail(rec, httptest.NewRequest(http.MethodGet, "/v1/players/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlayerDetailRejectsMalformedID(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	handlers.PlayerDetail(rec, httptest.NewRequest(http.MethodGet, "/v1/players/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
