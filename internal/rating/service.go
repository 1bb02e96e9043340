package rating

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoMatches signals a statistic was requested for a player with no
	// recorded games. Callers must treat ratios as undefined, not zero.
	ErrNoMatches = errors.New("player has no recorded matches")

	// ErrMatchNotFound signals a correction targeted an unknown match.
	ErrMatchNotFound = errors.New("match not found")

	// ErrPlayerNotFound signals a directory lookup for an unknown player.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrInvalidMatch signals a match that violates the basic invariants.
	ErrInvalidMatch = errors.New("invalid match")
)

// MatchStore is the append-only match log contract.
type MatchStore interface {
	Append(ctx context.Context, m Match) (Match, error)
	Update(ctx context.Context, m Match) error
	ListChronological(ctx context.Context) ([]Match, error)
}

// SnapshotStore persists the derived rating snapshot.
type SnapshotStore interface {
	All(ctx context.Context) (map[uuid.UUID]int, error)
	ReplaceAll(ctx context.Context, ratings map[uuid.UUID]int) error
}

// RecordedEvent describes a freshly applied match for downstream consumers
// (live broadcast, leaderboard invalidation).
type RecordedEvent struct {
	Match        Match
	WinnerRating int
	LoserRating  int
}

// Publisher receives rating change notifications. Implementations must not
// block the caller.
type Publisher interface {
	MatchRecorded(ctx context.Context, evt RecordedEvent)
}

// ServiceOptions configures the rating service.
type ServiceOptions struct {
	StartRating int // default 1000
	KFactor     int // default 32
}

// Service owns the rating lifecycle: appends apply incrementally against the
// persisted snapshot, corrections trigger a full replay of the match log.
// All snapshot mutation is serialized through an internal mutex; the engine
// is a single-writer model.
type Service struct {
	matches   MatchStore
	snapshots SnapshotStore
	publisher Publisher
	logger    zerolog.Logger

	start int
	k     int

	mu sync.Mutex
}

// NewService constructs a rating service.
func NewService(matches MatchStore, snapshots SnapshotStore, publisher Publisher, opts ServiceOptions, logger zerolog.Logger) *Service {
	start := opts.StartRating
	if start <= 0 {
		start = 1000
	}
	k := opts.KFactor
	if k <= 0 {
		k = 32
	}

	return &Service{
		matches:   matches,
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger.With().Str("component", "rating").Logger(),
		start:     start,
		k:         k,
	}
}

// SetPublisher installs the notification sink after construction. The
// leaderboard publisher depends on this service for trends, so wiring
// happens in two steps at bootstrap, before any match traffic.
func (s *Service) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

// RecordMatch appends a new match and applies it incrementally against the
// current snapshot. Incremental application is only valid for appends; any
// edit of an existing match must go through CorrectMatch.
func (s *Service) RecordMatch(ctx context.Context, m Match) (Match, error) {
	if err := validateMatch(m); err != nil {
		return Match{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.matches.Append(ctx, m)
	if err != nil {
		return Match{}, fmt.Errorf("append match: %w", err)
	}

	current, err := s.snapshots.All(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("load rating snapshot: %w", err)
	}

	engine := NewEngineWithRatings(s.start, s.k, current)
	engine.UpdateRatings(stored.WinnerID, stored.LoserID)

	if err := s.snapshots.ReplaceAll(ctx, engine.Snapshot()); err != nil {
		return Match{}, fmt.Errorf("persist rating snapshot: %w", err)
	}

	matchesRecorded.Inc()
	s.logger.Info().
		Str("match_id", stored.ID.String()).
		Str("winner_id", stored.WinnerID.String()).
		Str("loser_id", stored.LoserID.String()).
		Int("winner_rating", engine.Rating(stored.WinnerID)).
		Int("loser_rating", engine.Rating(stored.LoserID)).
		Msg("match recorded")

	if s.publisher != nil {
		s.publisher.MatchRecorded(ctx, RecordedEvent{
			Match:        stored,
			WinnerRating: engine.Rating(stored.WinnerID),
			LoserRating:  engine.Rating(stored.LoserID),
		})
	}

	return stored, nil
}

// CorrectMatch edits an existing match and regenerates the whole snapshot
// from scratch. The incremental path is unsound once history changes.
func (s *Service) CorrectMatch(ctx context.Context, m Match) error {
	if err := validateMatch(m); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.matches.Update(ctx, m); err != nil {
		return err
	}

	if _, err := s.recomputeLocked(ctx); err != nil {
		return err
	}

	s.logger.Info().Str("match_id", m.ID.String()).Msg("match corrected, ratings regenerated")
	return nil
}

// GenerateFromScratch replays the entire match log from a blank engine and
// persists the result. Idempotent for an unchanged log.
func (s *Service) GenerateFromScratch(ctx context.Context) (map[uuid.UUID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked(ctx)
}

func (s *Service) recomputeLocked(ctx context.Context) (map[uuid.UUID]int, error) {
	matches, err := s.matches.ListChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	ratings := NewEngine(s.start, s.k).Replay(matches)
	if err := s.snapshots.ReplaceAll(ctx, ratings); err != nil {
		return nil, fmt.Errorf("persist rating snapshot: %w", err)
	}

	fullRecomputes.Inc()
	return ratings, nil
}

// PlayerRating returns the player's current rating from the snapshot, or
// the starting rating for an unseen player.
func (s *Service) PlayerRating(ctx context.Context, player uuid.UUID) (int, error) {
	current, err := s.snapshots.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load rating snapshot: %w", err)
	}
	if r, ok := current[player]; ok {
		return r, nil
	}
	return s.start, nil
}

// CurrentRatings returns the persisted snapshot as-is, defaulting nothing.
func (s *Service) CurrentRatings(ctx context.Context) (map[uuid.UUID]int, error) {
	return s.snapshots.All(ctx)
}

// DefaultRating is the starting value assigned to unseen players.
func (s *Service) DefaultRating() int {
	return s.start
}

// RatingHistory rebuilds the player's rating trajectory from the match log.
func (s *Service) RatingHistory(ctx context.Context, player uuid.UUID) ([]HistoryPoint, error) {
	matches, err := s.matches.ListChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	history := NewEngine(s.start, s.k).History(player, matches)
	if len(history) == 0 {
		return nil, ErrNoMatches
	}
	return history, nil
}

// RatingTrend returns the player's last n history point ratings, oldest first.
func (s *Service) RatingTrend(ctx context.Context, player uuid.UUID, n int) ([]int, error) {
	history, err := s.RatingHistory(ctx, player)
	if err != nil {
		return nil, err
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	trend := make([]int, len(history))
	for i, p := range history {
		trend[i] = p.Rating
	}
	return trend, nil
}

// Stats aggregates the player's record. Ratio statistics are only defined
// for players with at least one game; otherwise ErrNoMatches is returned.
func (s *Service) Stats(ctx context.Context, player uuid.UUID) (PlayerStats, error) {
	matches, err := s.matches.ListChronological(ctx)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("list matches: %w", err)
	}

	stats := PlayerStats{PlayerID: player, BestRating: s.start}

	engine := NewEngine(s.start, s.k)
	for _, m := range SortChronological(matches) {
		engine.UpdateRatings(m.WinnerID, m.LoserID)

		switch player {
		case m.WinnerID:
			stats.Wins++
			stats.PointsWon += m.WinningScore
			stats.PointsLost += m.LosingScore
		case m.LoserID:
			stats.Losses++
			stats.PointsWon += m.LosingScore
			stats.PointsLost += m.WinningScore
		default:
			continue
		}

		// Anchor the best-rating date to the first game so a player who
		// never rises above the start still reports a real date.
		if stats.BestRatingDate.IsZero() {
			stats.BestRatingDate = m.PlayedAt
		}

		if r := engine.Rating(player); r > stats.BestRating {
			stats.BestRating = r
			stats.BestRatingDate = m.PlayedAt
		}
	}

	stats.GamesPlayed = stats.Wins + stats.Losses
	if stats.GamesPlayed == 0 {
		return PlayerStats{}, ErrNoMatches
	}

	stats.WinPercent = float64(stats.Wins) / float64(stats.GamesPlayed)
	stats.PointDifferential = stats.PointsWon - stats.PointsLost
	return stats, nil
}

func validateMatch(m Match) error {
	if m.WinnerID == m.LoserID {
		return fmt.Errorf("%w: winner and loser must differ", ErrInvalidMatch)
	}
	if m.WinnerID == uuid.Nil || m.LoserID == uuid.Nil {
		return fmt.Errorf("%w: winner and loser are required", ErrInvalidMatch)
	}
	if m.WinningScore < 0 || m.LosingScore < 0 {
		return fmt.Errorf("%w: scores must be non-negative", ErrInvalidMatch)
	}
	return nil
}
