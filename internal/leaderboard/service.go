package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/db/repository"
	"github.com/rankerhq/ranker/internal/rating"
)

// Leader is one row of the top standings, with the player's recent rating
// trajectory attached for trend arrows.
type Leader struct {
	Rank        int       `json:"rank"`
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Rating      int       `json:"rating"`
	Trend       []int     `json:"trend,omitempty"`
}

// Extreme is a single-holder superlative.
type Extreme struct {
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Value       float64   `json:"value"`
}

// Maxes holds the superlative boards.
type Maxes struct {
	MostGames      *Extreme `json:"most_games,omitempty"`
	BestWinPercent *Extreme `json:"best_win_percent,omitempty"`
	BestPointDiff  *Extreme `json:"best_point_diff,omitempty"`
}

// Totals are the site-wide aggregates shown under the board.
type Totals struct {
	Players int `json:"players"`
	Matches int `json:"matches"`
	Points  int `json:"points"`
}

// Overview is the full leaderboard response.
type Overview struct {
	Leaders     []Leader  `json:"leaders"`
	Maxes       Maxes     `json:"maxes"`
	Totals      Totals    `json:"totals"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TopReader serves the current rating snapshot, name-joined.
type TopReader interface {
	Top(ctx context.Context, n int) ([]repository.RatedPlayer, error)
}

// TrendReader rebuilds a player's recent rating trajectory.
type TrendReader interface {
	RatingTrend(ctx context.Context, player uuid.UUID, n int) ([]int, error)
}

// MatchLister reads the full match log for aggregate boards.
type MatchLister interface {
	ListChronological(ctx context.Context) ([]rating.Match, error)
}

// PlayerLister reads account rows for display names.
type PlayerLister interface {
	List(ctx context.Context) ([]repository.Player, error)
}

// ServiceOptions configures leaderboard behavior.
type ServiceOptions struct {
	TopN      int
	TrendDays int
	CacheTTL  time.Duration
	CacheKey  string
}

// Service assembles the leaderboard overview from the rating snapshot and
// the match log, and caches the assembled response in Redis. The cache is
// invalidated whenever a match lands, so a cold read right after a game
// always shows the new standings.
type Service struct {
	redis   *redis.Client
	ratings TopReader
	trends  TrendReader
	matches MatchLister
	players PlayerLister
	logger  zerolog.Logger

	topN      int
	trendDays int
	cacheTTL  time.Duration
	cacheKey  string
}

// NewService constructs a leaderboard service.
func NewService(rdb *redis.Client, ratings TopReader, trends TrendReader, matches MatchLister, players PlayerLister, opts ServiceOptions, logger zerolog.Logger) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 5
	}
	trendDays := opts.TrendDays
	if trendDays <= 0 {
		trendDays = 7
	}
	cacheKey := opts.CacheKey
	if cacheKey == "" {
		cacheKey = "ranker:leaderboard"
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &Service{
		redis:     rdb,
		ratings:   ratings,
		trends:    trends,
		matches:   matches,
		players:   players,
		logger:    logger.With().Str("component", "leaderboard").Logger(),
		topN:      topN,
		trendDays: trendDays,
		cacheTTL:  ttl,
		cacheKey:  cacheKey,
	}
}

// Overview returns the leaderboard, served from cache when fresh.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, s.cacheKey).Result()
		if err == nil {
			var overview Overview
			if err := json.Unmarshal([]byte(cached), &overview); err == nil {
				return &overview, nil
			}
			s.logger.Warn().Msg("discarding malformed leaderboard cache entry")
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("leaderboard cache read failed")
		}
	}

	overview, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(overview); err == nil {
			if err := s.redis.Set(ctx, s.cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("leaderboard cache write failed")
			}
		}
	}
	return overview, nil
}

// Invalidate drops the cached overview.
func (s *Service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.cacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard cache invalidation failed")
	}
}

// Leaders returns just the top standings, bypassing the response cache.
func (s *Service) Leaders(ctx context.Context) ([]Leader, error) {
	top, err := s.ratings.Top(ctx, s.topN)
	if err != nil {
		return nil, fmt.Errorf("load top ratings: %w", err)
	}

	leaders := make([]Leader, 0, len(top))
	for i, rp := range top {
		leader := Leader{
			Rank:        i + 1,
			PlayerID:    rp.PlayerID,
			DisplayName: rp.DisplayName,
			Rating:      rp.Rating,
		}
		trend, err := s.trends.RatingTrend(ctx, rp.PlayerID, s.trendDays)
		if err != nil && !errors.Is(err, rating.ErrNoMatches) {
			return nil, fmt.Errorf("trend for %s: %w", rp.PlayerID, err)
		}
		leader.Trend = trend
		leaders = append(leaders, leader)
	}
	return leaders, nil
}

type record struct {
	games      int
	wins       int
	pointsWon  int
	pointsLost int
}

func (s *Service) build(ctx context.Context) (*Overview, error) {
	leaders, err := s.Leaders(ctx)
	if err != nil {
		return nil, err
	}

	matches, err := s.matches.ListChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	players, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	names := make(map[uuid.UUID]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName
	}

	records := make(map[uuid.UUID]*record)
	totals := Totals{Matches: len(matches)}
	for _, m := range matches {
		totals.Points += m.WinningScore + m.LosingScore

		w := recordFor(records, m.WinnerID)
		w.games++
		w.wins++
		w.pointsWon += m.WinningScore
		w.pointsLost += m.LosingScore

		l := recordFor(records, m.LoserID)
		l.games++
		l.pointsWon += m.LosingScore
		l.pointsLost += m.WinningScore
	}
	totals.Players = len(records)

	maxes := Maxes{}
	for id, rec := range records {
		name := names[id]
		if maxes.MostGames == nil || float64(rec.games) > maxes.MostGames.Value {
			maxes.MostGames = &Extreme{PlayerID: id, DisplayName: name, Value: float64(rec.games)}
		}
		winPct := float64(rec.wins) / float64(rec.games)
		if maxes.BestWinPercent == nil || winPct > maxes.BestWinPercent.Value {
			maxes.BestWinPercent = &Extreme{PlayerID: id, DisplayName: name, Value: winPct}
		}
		diff := float64(rec.pointsWon - rec.pointsLost)
		if maxes.BestPointDiff == nil || diff > maxes.BestPointDiff.Value {
			maxes.BestPointDiff = &Extreme{PlayerID: id, DisplayName: name, Value: diff}
		}
	}

	return &Overview{
		Leaders:     leaders,
		Maxes:       maxes,
		Totals:      totals,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func recordFor(records map[uuid.UUID]*record, id uuid.UUID) *record {
	if r, ok := records[id]; ok {
		return r
	}
	r := &record{}
	records[id] = r
	return r
}
