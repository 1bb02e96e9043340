package leaderboard

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/rating"
	"github.com/rankerhq/ranker/internal/wordle"
	ws "github.com/rankerhq/ranker/pkg/http/ws"
)

// Publisher pushes live update events onto the Redis channel that feeds the
// WebSocket broadcaster, and invalidates the cached overview when standings
// change. Fire and forget: callers never block on delivery.
type Publisher struct {
	redis   *redis.Client
	svc     *Service
	channel string
	logger  zerolog.Logger
}

// NewPublisher constructs a publisher for the given pub/sub channel.
func NewPublisher(rdb *redis.Client, svc *Service, channel string, logger zerolog.Logger) *Publisher {
	if channel == "" {
		channel = "ranker:updates"
	}
	return &Publisher{
		redis:   rdb,
		svc:     svc,
		channel: channel,
		logger:  logger.With().Str("component", "leaderboard_publisher").Logger(),
	}
}

// MatchRecorded implements rating.Publisher.
func (p *Publisher) MatchRecorded(_ context.Context, evt rating.RecordedEvent) {
	go p.announceMatch(context.Background(), evt)
}

// PuzzleCompleted implements wordle.Announcer.
func (p *Publisher) PuzzleCompleted(_ context.Context, result wordle.DailyResult) {
	go p.announcePuzzle(context.Background(), result)
}

func (p *Publisher) announceMatch(ctx context.Context, evt rating.RecordedEvent) {
	p.svc.Invalidate(ctx)

	p.publish(ctx, ws.TypeMatchRecorded, ws.MatchRecordedPayload{
		MatchID:      evt.Match.ID.String(),
		WinnerID:     evt.Match.WinnerID.String(),
		LoserID:      evt.Match.LoserID.String(),
		Score:        scoreLine(evt.Match.WinningScore, evt.Match.LosingScore),
		WinnerRating: evt.WinnerRating,
		LoserRating:  evt.LoserRating,
	})

	leaders, err := p.svc.Leaders(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to collect leaderboard update")
		return
	}
	p.publish(ctx, ws.TypeLeaderboardUpdate, ws.LeaderboardUpdatePayload{
		Leaders: toWSEntries(leaders),
		MatchID: evt.Match.ID.String(),
	})
}

func (p *Publisher) announcePuzzle(ctx context.Context, result wordle.DailyResult) {
	p.publish(ctx, ws.TypeWordleCompleted, ws.WordleCompletedPayload{
		PlayerID: result.PlayerID.String(),
		Date:     result.Date.Format("2006-01-02"),
		Guesses:  result.Guesses,
		Fail:     result.Fail,
	})
}

func (p *Publisher) publish(ctx context.Context, msgType string, payload interface{}) {
	if p.redis == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", msgType).Msg("failed to marshal live update")
		return
	}
	data, err := json.Marshal(ws.Message{Type: msgType, Payload: raw})
	if err != nil {
		p.logger.Warn().Err(err).Str("type", msgType).Msg("failed to marshal live update envelope")
		return
	}
	if err := p.redis.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Warn().Err(err).Str("type", msgType).Msg("failed to publish live update")
	}
}
