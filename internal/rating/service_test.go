package rating

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMatchStore struct {
	matches []Match
}

func (s *stubMatchStore) Append(_ context.Context, m Match) (Match, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.matches = append(s.matches, m)
	return m, nil
}

func (s *stubMatchStore) Update(_ context.Context, m Match) error {
	for i := range s.matches {
		if s.matches[i].ID == m.ID {
			s.matches[i] = m
			return nil
		}
	}
	return ErrMatchNotFound
}

func (s *stubMatchStore) ListChronological(_ context.Context) ([]Match, error) {
	return SortChronological(s.matches), nil
}

type stubSnapshotStore struct {
	ratings  map[uuid.UUID]int
	replaces int
}

func newStubSnapshotStore() *stubSnapshotStore {
	return &stubSnapshotStore{ratings: map[uuid.UUID]int{}}
}

func (s *stubSnapshotStore) All(_ context.Context) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(s.ratings))
	for k, v := range s.ratings {
		out[k] = v
	}
	return out, nil
}

func (s *stubSnapshotStore) ReplaceAll(_ context.Context, ratings map[uuid.UUID]int) error {
	s.ratings = ratings
	s.replaces++
	return nil
}

type capturedEvent struct {
	events []RecordedEvent
}

func (c *capturedEvent) MatchRecorded(_ context.Context, evt RecordedEvent) {
	c.events = append(c.events, evt)
}

func newTestService(t *testing.T) (*Service, *stubMatchStore, *stubSnapshotStore, *capturedEvent) {
	t.Helper()
	matches := &stubMatchStore{}
	snapshots := newStubSnapshotStore()
	pub := &capturedEvent{}
	svc := NewService(matches, snapshots, pub, ServiceOptions{StartRating: 1000, KFactor: 32}, zerolog.Nop())
	return svc, matches, snapshots, pub
}

func TestRecordMatchAppliesIncrementally(t *testing.T) {
	svc, _, snapshots, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordMatch(ctx, matchAt(playerA, playerB, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, 1016, snapshots.ratings[playerA])
	assert.Equal(t, 984, snapshots.ratings[playerB])

	require.Len(t, pub.events, 1)
	assert.Equal(t, 1016, pub.events[0].WinnerRating)
	assert.Equal(t, 984, pub.events[0].LoserRating)
}

func TestRecordMatchRejectsSelfPlay(t *testing.T) {
	svc, matches, _, _ := newTestService(t)

	_, err := svc.RecordMatch(context.Background(), matchAt(playerA, playerA, time.Now()))
	assert.ErrorIs(t, err, ErrInvalidMatch)
	assert.Empty(t, matches.matches)
}

func TestRecordMatchRejectsNegativeScores(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	m := matchAt(playerA, playerB, time.Now())
	m.LosingScore = -1
	_, err := svc.RecordMatch(context.Background(), m)
	assert.ErrorIs(t, err, ErrInvalidMatch)
}

func TestCorrectMatchTriggersFullRecompute(t *testing.T) {
	svc, matches, snapshots, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.RecordMatch(ctx, matchAt(playerA, playerB, time.Now()))
	require.NoError(t, err)
	_, err = svc.RecordMatch(ctx, matchAt(playerA, playerB, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	// Flip the first result: B actually won.
	corrected := first
	corrected.WinnerID = playerB
	corrected.LoserID = playerA
	require.NoError(t, svc.CorrectMatch(ctx, corrected))

	// The snapshot must equal a clean replay of the edited log.
	stored, err := matches.ListChronological(ctx)
	require.NoError(t, err)
	expected := NewEngine(1000, 32).Replay(stored)
	assert.Equal(t, expected, snapshots.ratings)
}

func TestCorrectUnknownMatch(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	m := matchAt(playerA, playerB, time.Now())
	err := svc.CorrectMatch(context.Background(), m)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestGenerateFromScratchIsIdempotent(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	_, err := svc.RecordMatch(ctx, matchAt(playerA, playerB, base))
	require.NoError(t, err)
	_, err = svc.RecordMatch(ctx, matchAt(playerB, playerC, base.Add(time.Hour)))
	require.NoError(t, err)

	first, err := svc.GenerateFromScratch(ctx)
	require.NoError(t, err)
	second, err := svc.GenerateFromScratch(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPlayerRatingDefaultsForUnseenPlayer(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	r, err := svc.PlayerRating(context.Background(), playerC)
	require.NoError(t, err)
	assert.Equal(t, 1000, r)
}

func TestStatsUndefinedWithZeroGames(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Stats(context.Background(), playerC)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestStatsAggregatesRecord(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	m1 := matchAt(playerA, playerB, base)
	m1.WinningScore, m1.LosingScore = 21, 15
	m2 := matchAt(playerB, playerA, base.Add(time.Hour))
	m2.WinningScore, m2.LosingScore = 21, 19

	_, err := svc.RecordMatch(ctx, m1)
	require.NoError(t, err)
	_, err = svc.RecordMatch(ctx, m2)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, playerA)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 2, stats.GamesPlayed)
	assert.InDelta(t, 0.5, stats.WinPercent, 1e-9)
	assert.Equal(t, 21+19, stats.PointsWon)
	assert.Equal(t, 15+21, stats.PointsLost)
	assert.Equal(t, 4, stats.PointDifferential)
	assert.Equal(t, 1016, stats.BestRating)
}

func TestRatingHistoryNotFoundForUnseenPlayer(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.RatingHistory(context.Background(), playerC)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestRatingTrendReturnsLastN(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := svc.RecordMatch(ctx, matchAt(playerA, playerB, base.AddDate(0, 0, i)))
		require.NoError(t, err)
	}

	trend, err := svc.RatingTrend(ctx, playerA, 2)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Greater(t, trend[1], trend[0])
}

func TestStatsWinlessPlayerKeepsFirstMatchDate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	first := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	_, err := svc.RecordMatch(ctx, matchAt(playerA, playerB, first))
	require.NoError(t, err)
	_, err = svc.RecordMatch(ctx, matchAt(playerA, playerB, first.AddDate(0, 0, 1)))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, playerB)
	require.NoError(t, err)

	// Never rose above the start, so the best rating stays at the
	// default but the date still anchors to a real game.
	assert.Equal(t, 1000, stats.BestRating)
	assert.Equal(t, first, stats.BestRatingDate)
	assert.False(t, stats.BestRatingDate.IsZero())
}
