package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rankerhq/ranker/internal/rating"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("already exists")

// Player is an account row. PasswordHash is empty for OAuth-only accounts.
type Player struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
	Provider     string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// PlayerRepository exposes typed DB operations required by auth and
// reporting flows.
type PlayerRepository struct {
	db Querier
}

// NewPlayerRepository constructs a player repository over a pgx pool.
func NewPlayerRepository(db Querier) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `id, email, display_name, password_hash, provider, created_at, last_login_at`

func scanPlayer(row pgx.Row) (Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.PasswordHash, &p.Provider, &p.CreatedAt, &p.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Player{}, ErrNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("scan player: %w", err)
	}
	return p, nil
}

// Create inserts a new account.
func (r *PlayerRepository) Create(ctx context.Context, p Player) (Player, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO players (email, display_name, password_hash, provider)
		VALUES ($1, $2, $3, $4)
		RETURNING `+playerColumns,
		p.Email, p.DisplayName, p.PasswordHash, p.Provider)

	created, err := scanPlayer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Player{}, ErrDuplicate
		}
		return Player{}, err
	}
	return created, nil
}

// GetByID fetches a player by ID.
func (r *PlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (Player, error) {
	return scanPlayer(r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
}

// GetByEmail fetches a player by email if present.
func (r *PlayerRepository) GetByEmail(ctx context.Context, email string) (Player, error) {
	return scanPlayer(r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE email = $1`, email))
}

// UpdateLogin records the last login timestamp.
func (r *PlayerRepository) UpdateLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE players SET last_login_at = now() WHERE id = $1`, id)
	return err
}

// List returns all players ordered by display name.
func (r *PlayerRepository) List(ctx context.Context) ([]Player, error) {
	rows, err := r.db.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Email, &p.DisplayName, &p.PasswordHash, &p.Provider, &p.CreatedAt, &p.LastLoginAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ListPlayers implements rating.PlayerDirectory; no account internals leak
// through the directory view.
func (r *PlayerRepository) ListPlayers(ctx context.Context) ([]rating.PlayerRecord, error) {
	players, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]rating.PlayerRecord, len(players))
	for i, p := range players {
		records[i] = rating.PlayerRecord{ID: p.ID, DisplayName: p.DisplayName, CreatedAt: p.CreatedAt}
	}
	return records, nil
}

// GetPlayer implements rating.PlayerDirectory.
func (r *PlayerRepository) GetPlayer(ctx context.Context, id uuid.UUID) (rating.PlayerRecord, error) {
	p, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return rating.PlayerRecord{}, rating.ErrPlayerNotFound
	}
	if err != nil {
		return rating.PlayerRecord{}, err
	}
	return rating.PlayerRecord{ID: p.ID, DisplayName: p.DisplayName, CreatedAt: p.CreatedAt}, nil
}
