package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rankerhq/ranker/internal/wordle"
)

// WordleRepository persists daily puzzle sessions and results. Elapsed
// times are stored as millisecond integers.
type WordleRepository struct {
	db Querier
}

// NewWordleRepository constructs a wordle repository.
func NewWordleRepository(db Querier) *WordleRepository {
	return &WordleRepository{db: db}
}

// ListActive returns the player's in-progress sessions. More than one row
// means stored state is inconsistent; the service decides how to repair.
func (r *WordleRepository) ListActive(ctx context.Context, player uuid.UUID) ([]wordle.ActiveSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, player_id, word, guess_history, start_time
		  FROM active_wordles
		 WHERE player_id = $1
		 ORDER BY start_time`, player)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []wordle.ActiveSession
	for rows.Next() {
		var s wordle.ActiveSession
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.Word, &s.GuessHistory, &s.StartTime); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CreateActive inserts a new session and returns it with its generated ID.
func (r *WordleRepository) CreateActive(ctx context.Context, s wordle.ActiveSession) (wordle.ActiveSession, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO active_wordles (player_id, word, guess_history, start_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.PlayerID, s.Word, s.GuessHistory, s.StartTime).Scan(&s.ID)
	if err != nil {
		return wordle.ActiveSession{}, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// UpdateActive persists the session's guess history.
func (r *WordleRepository) UpdateActive(ctx context.Context, s wordle.ActiveSession) error {
	_, err := r.db.Exec(ctx, `UPDATE active_wordles SET guess_history = $2 WHERE id = $1`, s.ID, s.GuessHistory)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// DeleteActive removes all of the player's sessions.
func (r *WordleRepository) DeleteActive(ctx context.Context, player uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM active_wordles WHERE player_id = $1`, player)
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// GetResult fetches the player's result for a date, nil if absent.
func (r *WordleRepository) GetResult(ctx context.Context, player uuid.UUID, date time.Time) (*wordle.DailyResult, error) {
	var res wordle.DailyResult
	var elapsedMs int64
	err := r.db.QueryRow(ctx, `
		SELECT id, player_id, date, word, guesses, elapsed_ms, fail
		  FROM wordles
		 WHERE player_id = $1 AND date = $2`,
		player, date).Scan(&res.ID, &res.PlayerID, &res.Date, &res.Word, &res.Guesses, &elapsedMs, &res.Fail)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	res.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	return &res, nil
}

// CreateResult inserts the day's permanent result.
func (r *WordleRepository) CreateResult(ctx context.Context, res wordle.DailyResult) (wordle.DailyResult, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO wordles (player_id, date, word, guesses, elapsed_ms, fail)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		res.PlayerID, res.Date, res.Word, res.Guesses, res.Elapsed.Milliseconds(), res.Fail).Scan(&res.ID)
	if err != nil {
		return wordle.DailyResult{}, fmt.Errorf("insert result: %w", err)
	}
	return res, nil
}

// ListByDate returns the day's board ranked by fail, then guesses, then time.
func (r *WordleRepository) ListByDate(ctx context.Context, date time.Time) ([]wordle.RankedResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.player_id, p.display_name, w.date, w.guesses, w.elapsed_ms, w.fail
		  FROM wordles w
		  JOIN players p ON p.id = w.player_id
		 WHERE w.date = $1
		 ORDER BY w.fail, w.guesses, w.elapsed_ms`, date)
	if err != nil {
		return nil, fmt.Errorf("list results by date: %w", err)
	}
	defer rows.Close()
	return collectRanked(rows)
}

// ListFailures returns every failed attempt, newest first.
func (r *WordleRepository) ListFailures(ctx context.Context) ([]wordle.RankedResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.player_id, p.display_name, w.date, w.guesses, w.elapsed_ms, w.fail
		  FROM wordles w
		  JOIN players p ON p.id = w.player_id
		 WHERE w.fail
		 ORDER BY w.date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()
	return collectRanked(rows)
}

func collectRanked(rows pgx.Rows) ([]wordle.RankedResult, error) {
	var results []wordle.RankedResult
	for rows.Next() {
		var res wordle.RankedResult
		var elapsedMs int64
		if err := rows.Scan(&res.PlayerID, &res.DisplayName, &res.Date, &res.Guesses, &elapsedMs, &res.Fail); err != nil {
			return nil, fmt.Errorf("scan ranked result: %w", err)
		}
		res.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		res.Rank = len(results) + 1
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListByPlayer returns the player's full result history, newest first.
func (r *WordleRepository) ListByPlayer(ctx context.Context, player uuid.UUID) ([]wordle.DailyResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, player_id, date, word, guesses, elapsed_ms, fail
		  FROM wordles
		 WHERE player_id = $1
		 ORDER BY date DESC`, player)
	if err != nil {
		return nil, fmt.Errorf("list results by player: %w", err)
	}
	defer rows.Close()

	var results []wordle.DailyResult
	for rows.Next() {
		var res wordle.DailyResult
		var elapsedMs int64
		if err := rows.Scan(&res.ID, &res.PlayerID, &res.Date, &res.Word, &res.Guesses, &elapsedMs, &res.Fail); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		results = append(results, res)
	}
	return results, rows.Err()
}

// AverageLeaders computes the two long-run boards over solved puzzles only.
func (r *WordleRepository) AverageLeaders(ctx context.Context, n int) (wordle.AverageLeaders, error) {
	byGuesses, err := r.averages(ctx, `avg_guesses`, n)
	if err != nil {
		return wordle.AverageLeaders{}, err
	}
	byTime, err := r.averages(ctx, `avg_elapsed_ms`, n)
	if err != nil {
		return wordle.AverageLeaders{}, err
	}
	return wordle.AverageLeaders{BestByGuesses: byGuesses, BestByTime: byTime}, nil
}

func (r *WordleRepository) averages(ctx context.Context, orderCol string, n int) ([]wordle.AverageEntry, error) {
	// orderCol is one of two fixed alias names, never user input.
	rows, err := r.db.Query(ctx, `
		SELECT w.player_id, p.display_name,
		       AVG(w.guesses) AS avg_guesses,
		       AVG(w.elapsed_ms) AS avg_elapsed_ms,
		       COUNT(*) AS played
		  FROM wordles w
		  JOIN players p ON p.id = w.player_id
		 WHERE NOT w.fail
		 GROUP BY w.player_id, p.display_name
		 ORDER BY `+orderCol+`
		 LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("average leaders: %w", err)
	}
	defer rows.Close()

	var entries []wordle.AverageEntry
	for rows.Next() {
		var e wordle.AverageEntry
		var avgElapsedMs float64
		if err := rows.Scan(&e.PlayerID, &e.DisplayName, &e.AvgGuesses, &avgElapsedMs, &e.Played); err != nil {
			return nil, fmt.Errorf("scan average entry: %w", err)
		}
		e.AvgElapsed = time.Duration(avgElapsedMs * float64(time.Millisecond))
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
