package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankerhq/ranker/internal/db/repository"
	"github.com/rankerhq/ranker/internal/rating"
)

var (
	champ   = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	second  = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	third   = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	fourth  = uuid.MustParse("00000000-0000-0000-0000-000000000004")
	eventID = uuid.MustParse("00000000-0000-0000-0000-0000000000ee")
)

type stubEventStore struct {
	events []repository.Event
}

func (s *stubEventStore) List(_ context.Context) ([]repository.Event, error) {
	return s.events, nil
}

func (s *stubEventStore) Get(_ context.Context, id uuid.UUID) (repository.Event, error) {
	for _, e := range s.events {
		if e.ID == id {
			return e, nil
		}
	}
	return repository.Event{}, repository.ErrNotFound
}

type stubMatchReader struct {
	matches []rating.Match
}

func (s *stubMatchReader) ListByEvent(_ context.Context, _ uuid.UUID) ([]rating.Match, error) {
	return s.matches, nil
}

type stubPlayerReader struct {
	players []repository.Player
}

func (s *stubPlayerReader) List(_ context.Context) ([]repository.Player, error) {
	return s.players, nil
}

type stubRatingReader struct {
	ratings map[uuid.UUID]int
}

func (s *stubRatingReader) PlayerRating(_ context.Context, player uuid.UUID) (int, error) {
	if r, ok := s.ratings[player]; ok {
		return r, nil
	}
	return 1000, nil
}

func phaseMatch(winner, loser uuid.UUID, phase int) rating.Match {
	return rating.Match{
		ID:         uuid.New(),
		WinnerID:   winner,
		LoserID:    loser,
		PlayedAt:   time.Date(2023, 6, 10, 12, 0, 0, 0, time.UTC),
		EventID:    &eventID,
		EventPhase: &phase,
	}
}

func newTestService(matches []rating.Match) *Service {
	return NewService(
		&stubEventStore{events: []repository.Event{{
			ID:     eventID,
			Name:   "Summer Open",
			HeldAt: time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC),
		}}},
		&stubMatchReader{matches: matches},
		&stubPlayerReader{players: []repository.Player{
			{ID: champ, DisplayName: "Champ"},
			{ID: second, DisplayName: "Second"},
			{ID: third, DisplayName: "Third"},
			{ID: fourth, DisplayName: "Fourth"},
		}},
		&stubRatingReader{ratings: map[uuid.UUID]int{champ: 1080, second: 1040}},
		zerolog.Nop(),
	)
}

func TestPlacementsFromBracket(t *testing.T) {
	// Final (phase 1) and third-place match (phase 3).
	svc := newTestService([]rating.Match{
		phaseMatch(champ, second, 1),
		phaseMatch(third, fourth, 3),
	})

	summary, err := svc.Get(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, "Summer Open", summary.Name)
	assert.Equal(t, 4, summary.Players)

	require.Len(t, summary.Placements, 3, "third-place match loser is not ranked")
	assert.Equal(t, 1, summary.Placements[0].Place)
	assert.Equal(t, champ, summary.Placements[0].PlayerID)
	assert.Equal(t, 1080, summary.Placements[0].Rating)
	assert.Equal(t, 2, summary.Placements[1].Place)
	assert.Equal(t, second, summary.Placements[1].PlayerID)
	assert.Equal(t, 3, summary.Placements[2].Place)
	assert.Equal(t, third, summary.Placements[2].PlayerID)
}

func TestUntaggedMatchesCountOnlyAsParticipation(t *testing.T) {
	untagged := rating.Match{
		ID:       uuid.New(),
		WinnerID: third,
		LoserID:  fourth,
		PlayedAt: time.Date(2023, 6, 10, 11, 0, 0, 0, time.UTC),
		EventID:  &eventID,
	}
	svc := newTestService([]rating.Match{untagged, phaseMatch(champ, second, 1)})

	summary, err := svc.Get(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Players)
	require.Len(t, summary.Placements, 2)
}

func TestGetUnknownEvent(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListIncludesStandings(t *testing.T) {
	svc := newTestService([]rating.Match{phaseMatch(champ, second, 1)})

	summaries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, eventID, summaries[0].ID)
	require.Len(t, summaries[0].Placements, 2)
}
