package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RatedPlayer is one row of the persisted rating snapshot, name-joined for
// leaderboard reads.
type RatedPlayer struct {
	PlayerID    uuid.UUID
	DisplayName string
	Rating      int
}

// RatingRepository persists the derived rating snapshot. The table is a
// cache of the match log replay, wiped and rewritten on every recompute.
type RatingRepository struct {
	db Querier
}

// NewRatingRepository constructs a rating repository.
func NewRatingRepository(db Querier) *RatingRepository {
	return &RatingRepository{db: db}
}

// All loads the full snapshot.
func (r *RatingRepository) All(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.db.Query(ctx, `SELECT player_id, rating FROM player_ratings`)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var rt int
		if err := rows.Scan(&id, &rt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings[id] = rt
	}
	return ratings, rows.Err()
}

// ReplaceAll swaps the stored snapshot for the given one atomically.
func (r *RatingRepository) ReplaceAll(ctx context.Context, ratings map[uuid.UUID]int) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM player_ratings`)
	for id, rt := range ratings {
		batch.Queue(`INSERT INTO player_ratings (player_id, rating) VALUES ($1, $2)`, id, rt)
	}

	// Querier does not expose SendBatch; fall back to sequential statements
	// when the underlying pool is not batch-capable.
	if sender, ok := r.db.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	}); ok {
		results := sender.SendBatch(ctx, batch)
		defer results.Close()
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("replace ratings: %w", err)
			}
		}
		return nil
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM player_ratings`); err != nil {
		return fmt.Errorf("clear ratings: %w", err)
	}
	for id, rt := range ratings {
		if _, err := r.db.Exec(ctx, `INSERT INTO player_ratings (player_id, rating) VALUES ($1, $2)`, id, rt); err != nil {
			return fmt.Errorf("insert rating: %w", err)
		}
	}
	return nil
}

// Top returns the n highest rated players, name-joined, ties broken by name.
func (r *RatingRepository) Top(ctx context.Context, n int) ([]RatedPlayer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT pr.player_id, p.display_name, pr.rating
		  FROM player_ratings pr
		  JOIN players p ON p.id = pr.player_id
		 ORDER BY pr.rating DESC, p.display_name
		 LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("top ratings: %w", err)
	}
	defer rows.Close()

	var leaders []RatedPlayer
	for rows.Next() {
		var rp RatedPlayer
		if err := rows.Scan(&rp.PlayerID, &rp.DisplayName, &rp.Rating); err != nil {
			return nil, fmt.Errorf("scan rated player: %w", err)
		}
		leaders = append(leaders, rp)
	}
	return leaders, rows.Err()
}
