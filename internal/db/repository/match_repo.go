package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rankerhq/ranker/internal/rating"
)

// MatchRepository is the match log. Implements the rating service's store
// contracts plus the name-joined reporting reads.
type MatchRepository struct {
	db Querier
}

// NewMatchRepository constructs a match repository.
func NewMatchRepository(db Querier) *MatchRepository {
	return &MatchRepository{db: db}
}

// Append inserts a new match and returns it with its generated ID.
func (r *MatchRepository) Append(ctx context.Context, m rating.Match) (rating.Match, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO matches (winner_id, loser_id, winning_score, losing_score, played_at, event_id, event_phase)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		m.WinnerID, m.LoserID, m.WinningScore, m.LosingScore, m.PlayedAt, m.EventID, m.EventPhase)

	if err := row.Scan(&m.ID); err != nil {
		return rating.Match{}, fmt.Errorf("insert match: %w", err)
	}
	return m, nil
}

// Update rewrites an existing match in place.
func (r *MatchRepository) Update(ctx context.Context, m rating.Match) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE matches
		   SET winner_id = $2,
		       loser_id = $3,
		       winning_score = $4,
		       losing_score = $5,
		       played_at = $6,
		       event_id = $7,
		       event_phase = $8
		 WHERE id = $1`,
		m.ID, m.WinnerID, m.LoserID, m.WinningScore, m.LosingScore, m.PlayedAt, m.EventID, m.EventPhase)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rating.ErrMatchNotFound
	}
	return nil
}

// ListChronological returns the full match log ordered by play time.
func (r *MatchRepository) ListChronological(ctx context.Context) ([]rating.Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, winner_id, loser_id, winning_score, losing_score, played_at, event_id, event_phase
		  FROM matches
		 ORDER BY played_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func collectMatches(rows pgx.Rows) ([]rating.Match, error) {
	var matches []rating.Match
	for rows.Next() {
		var m rating.Match
		if err := rows.Scan(&m.ID, &m.WinnerID, &m.LoserID, &m.WinningScore, &m.LosingScore, &m.PlayedAt, &m.EventID, &m.EventPhase); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListRecent returns the n most recent matches from the winner's
// perspective, with both names joined in.
func (r *MatchRepository) ListRecent(ctx context.Context, n int) ([]rating.MatchSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.played_at, m.loser_id, l.display_name, true,
		       m.winning_score || '-' || m.losing_score
		  FROM matches m
		  JOIN players l ON l.id = m.loser_id
		 ORDER BY m.played_at DESC, m.id DESC
		 LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("list recent matches: %w", err)
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// ListByPlayer returns the player's n most recent matches, opponent-joined,
// seen from the player's side.
func (r *MatchRepository) ListByPlayer(ctx context.Context, player uuid.UUID, n int) ([]rating.MatchSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.played_at,
		       CASE WHEN m.winner_id = $1 THEN m.loser_id ELSE m.winner_id END,
		       o.display_name,
		       m.winner_id = $1,
		       m.winning_score || '-' || m.losing_score
		  FROM matches m
		  JOIN players o ON o.id = CASE WHEN m.winner_id = $1 THEN m.loser_id ELSE m.winner_id END
		 WHERE m.winner_id = $1 OR m.loser_id = $1
		 ORDER BY m.played_at DESC, m.id DESC
		 LIMIT $2`, player, n)
	if err != nil {
		return nil, fmt.Errorf("list player matches: %w", err)
	}
	defer rows.Close()
	return collectSummaries(rows)
}

func collectSummaries(rows pgx.Rows) ([]rating.MatchSummary, error) {
	var summaries []rating.MatchSummary
	for rows.Next() {
		var s rating.MatchSummary
		if err := rows.Scan(&s.MatchID, &s.PlayedAt, &s.OpponentID, &s.OpponentName, &s.Won, &s.Score); err != nil {
			return nil, fmt.Errorf("scan match summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListByEvent returns all matches recorded under the event, ordered by
// phase then play time.
func (r *MatchRepository) ListByEvent(ctx context.Context, event uuid.UUID) ([]rating.Match, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, winner_id, loser_id, winning_score, losing_score, played_at, event_id, event_phase
		  FROM matches
		 WHERE event_id = $1
		 ORDER BY event_phase, played_at, id`, event)
	if err != nil {
		return nil, fmt.Errorf("list event matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

// Get fetches a single match.
func (r *MatchRepository) Get(ctx context.Context, id uuid.UUID) (rating.Match, error) {
	var m rating.Match
	err := r.db.QueryRow(ctx, `
		SELECT id, winner_id, loser_id, winning_score, losing_score, played_at, event_id, event_phase
		  FROM matches
		 WHERE id = $1`, id).
		Scan(&m.ID, &m.WinnerID, &m.LoserID, &m.WinningScore, &m.LosingScore, &m.PlayedAt, &m.EventID, &m.EventPhase)
	if errors.Is(err, pgx.ErrNoRows) {
		return rating.Match{}, rating.ErrMatchNotFound
	}
	if err != nil {
		return rating.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}
