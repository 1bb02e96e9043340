package event

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/db/repository"
	"github.com/rankerhq/ranker/internal/rating"
)

// Placement is one player's finishing position at an event.
type Placement struct {
	Place       int       `json:"place"`
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Rating      int       `json:"rating"`
}

// Summary is an event with its computed standings.
type Summary struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	HeldAt     time.Time   `json:"held_at"`
	Location   string      `json:"location,omitempty"`
	Players    int         `json:"players"`
	Placements []Placement `json:"placements"`
}

// EventStore reads event metadata.
type EventStore interface {
	List(ctx context.Context) ([]repository.Event, error)
	Get(ctx context.Context, id uuid.UUID) (repository.Event, error)
}

// MatchReader reads an event's tagged matches.
type MatchReader interface {
	ListByEvent(ctx context.Context, event uuid.UUID) ([]rating.Match, error)
}

// PlayerReader reads account rows for display names.
type PlayerReader interface {
	List(ctx context.Context) ([]repository.Player, error)
}

// RatingReader resolves a player's current rating.
type RatingReader interface {
	PlayerRating(ctx context.Context, player uuid.UUID) (int, error)
}

// Service derives event standings from phase-tagged matches. The winner of
// a phase-N match finishes in place N; the loser finishes one place lower,
// except below the third-place match where losers are not ranked.
type Service struct {
	events  EventStore
	matches MatchReader
	players PlayerReader
	ratings RatingReader
	logger  zerolog.Logger
}

// NewService constructs an event service.
func NewService(events EventStore, matches MatchReader, players PlayerReader, ratings RatingReader, logger zerolog.Logger) *Service {
	return &Service{
		events:  events,
		matches: matches,
		players: players,
		ratings: ratings,
		logger:  logger.With().Str("component", "event").Logger(),
	}
}

// List returns all events with their standings, newest first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	summaries := make([]Summary, 0, len(events))
	for _, e := range events {
		summary, err := s.summarize(ctx, e)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// Get returns one event with its standings.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Summary, error) {
	e, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, e)
}

// lastRankedPhase is the deepest phase whose loser still earns a place.
// Below the third-place match everyone just shares "participated".
const lastRankedPhase = 3

func (s *Service) summarize(ctx context.Context, e repository.Event) (*Summary, error) {
	matches, err := s.matches.ListByEvent(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("event matches: %w", err)
	}

	players, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	names := make(map[uuid.UUID]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName
	}

	participants := make(map[uuid.UUID]struct{})
	var placements []Placement
	placed := make(map[uuid.UUID]struct{})

	place := func(player uuid.UUID, pos int) error {
		if _, done := placed[player]; done {
			return nil
		}
		placed[player] = struct{}{}
		current, err := s.ratings.PlayerRating(ctx, player)
		if err != nil {
			return fmt.Errorf("rating for %s: %w", player, err)
		}
		placements = append(placements, Placement{
			Place:       pos,
			PlayerID:    player,
			DisplayName: names[player],
			Rating:      current,
		})
		return nil
	}

	for _, m := range matches {
		participants[m.WinnerID] = struct{}{}
		participants[m.LoserID] = struct{}{}

		if m.EventPhase == nil {
			continue
		}
		phase := *m.EventPhase

		if err := place(m.WinnerID, phase); err != nil {
			return nil, err
		}
		if phase < lastRankedPhase {
			if err := place(m.LoserID, phase+1); err != nil {
				return nil, err
			}
		}
	}

	sort.SliceStable(placements, func(i, j int) bool {
		return placements[i].Place < placements[j].Place
	})

	return &Summary{
		ID:         e.ID,
		Name:       e.Name,
		HeldAt:     e.HeldAt,
		Location:   e.Location,
		Players:    len(participants),
		Placements: placements,
	}, nil
}
