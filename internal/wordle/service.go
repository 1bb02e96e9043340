package wordle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidGuess signals a guess that fails the catalog schema. No
	// state is mutated.
	ErrInvalidGuess = errors.New("guess does not match schema")

	// ErrAlreadyCompleted signals the player already has a result for
	// today. Duplicate submissions (network retries included) always land
	// here, never on a second result.
	ErrAlreadyCompleted = errors.New("daily puzzle already completed")

	// ErrNoMoreGuesses signals the session is at the guess limit.
	ErrNoMoreGuesses = errors.New("no more guesses allowed")

	// ErrInconsistentState signals a session/result invariant violation.
	// The service repairs the stored state before returning it, so the
	// caller should simply retry.
	ErrInconsistentState = errors.New("inconsistent session state")
)

// SessionStore is the persistence contract for sessions and results.
type SessionStore interface {
	ListActive(ctx context.Context, player uuid.UUID) ([]ActiveSession, error)
	CreateActive(ctx context.Context, s ActiveSession) (ActiveSession, error)
	UpdateActive(ctx context.Context, s ActiveSession) error
	DeleteActive(ctx context.Context, player uuid.UUID) error
	GetResult(ctx context.Context, player uuid.UUID, date time.Time) (*DailyResult, error)
	CreateResult(ctx context.Context, r DailyResult) (DailyResult, error)
}

// Clock supplies the current time; injected so tests control day rollover.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// State names reported in guess outcomes.
const (
	StateActive    = "active"
	StateCompleted = "completed"
)

// GuessOutcome is the result of an accepted guess submission.
type GuessOutcome struct {
	State   string       `json:"state"`
	Session *SessionView `json:"session,omitempty"`
	Result  *DailyResult `json:"result,omitempty"`
}

// Announcer receives completed puzzle notifications. Implementations must
// not block the caller.
type Announcer interface {
	PuzzleCompleted(ctx context.Context, result DailyResult)
}

// Service runs the daily puzzle state machine. Correctness of the
// one-active-session / one-result-per-day invariants assumes callers
// serialize submissions per player.
type Service struct {
	store     SessionStore
	catalog   *Catalog
	clock     Clock
	announcer Announcer
	logger    zerolog.Logger
}

// NewService constructs the puzzle service.
func NewService(store SessionStore, catalog *Catalog, clock Clock, announcer Announcer, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	return &Service{
		store:     store,
		catalog:   catalog,
		clock:     clock,
		announcer: announcer,
		logger:    logger.With().Str("component", "wordle").Logger(),
	}
}

func (s *Service) today() time.Time {
	y, m, d := s.clock.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SubmitGuess applies one guess for the player, driving the session through
// its lifecycle: create on first guess of the day, append while active,
// finalize into a DailyResult on solve or guess exhaustion.
func (s *Service) SubmitGuess(ctx context.Context, player uuid.UUID, guessText string) (*GuessOutcome, error) {
	guess := strings.ToUpper(strings.TrimSpace(guessText))
	if !s.catalog.ValidGuess(guess) {
		return nil, ErrInvalidGuess
	}

	today := s.today()

	sessions, err := s.store.ListActive(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}

	// More than one active session should be impossible. Repair by
	// dropping them all and make the client retry from a clean slate.
	if len(sessions) > 1 {
		s.logger.Warn().Str("player_id", player.String()).Int("sessions", len(sessions)).Msg("duplicate active sessions repaired")
		if err := s.store.DeleteActive(ctx, player); err != nil {
			return nil, fmt.Errorf("repair duplicate sessions: %w", err)
		}
		return nil, ErrInconsistentState
	}

	// A session from a previous day is abandoned: deleted silently, no
	// result recorded for that day.
	if len(sessions) == 1 && !sessions[0].Date().Equal(today) {
		s.logger.Info().Str("player_id", player.String()).Time("session_date", sessions[0].Date()).Msg("stale session forfeited")
		if err := s.store.DeleteActive(ctx, player); err != nil {
			return nil, fmt.Errorf("delete stale session: %w", err)
		}
		sessions = nil
	}

	result, err := s.store.GetResult(ctx, player, today)
	if err != nil {
		return nil, fmt.Errorf("load daily result: %w", err)
	}

	switch {
	case len(sessions) == 0 && result == nil:
		return s.startSession(ctx, player, guess)

	case len(sessions) == 0 && result != nil:
		return nil, ErrAlreadyCompleted

	case result != nil:
		// Both an active session and a result for today. The result is
		// source of truth; drop the session and reject.
		s.logger.Warn().Str("player_id", player.String()).Msg("session and result both present, session dropped")
		if err := s.store.DeleteActive(ctx, player); err != nil {
			return nil, fmt.Errorf("repair session/result conflict: %w", err)
		}
		return nil, ErrInconsistentState

	default:
		return s.applyGuess(ctx, sessions[0], guess)
	}
}

func (s *Service) startSession(ctx context.Context, player uuid.UUID, guess string) (*GuessOutcome, error) {
	session, err := s.store.CreateActive(ctx, ActiveSession{
		PlayerID:     player,
		Word:         s.catalog.RandomAnswer(),
		GuessHistory: guess,
		StartTime:    s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	guessesTotal.Inc()

	// A lucky first guess finishes the puzzle immediately.
	if session.Solved() || session.Guesses() >= s.catalog.Schema().MaxGuesses {
		return s.finalize(ctx, session)
	}

	view := s.viewOf(session, false)
	return &GuessOutcome{State: StateActive, Session: &view}, nil
}

func (s *Service) applyGuess(ctx context.Context, session ActiveSession, guess string) (*GuessOutcome, error) {
	if session.Guesses() >= s.catalog.Schema().MaxGuesses {
		return nil, ErrNoMoreGuesses
	}

	session.GuessHistory += guess
	guessesTotal.Inc()

	if session.Solved() || session.Guesses() >= s.catalog.Schema().MaxGuesses {
		return s.finalize(ctx, session)
	}

	if err := s.store.UpdateActive(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	view := s.viewOf(session, false)
	return &GuessOutcome{State: StateActive, Session: &view}, nil
}

// finalize converts the session into its permanent daily result and removes
// the session. This is the only path that creates a DailyResult.
func (s *Service) finalize(ctx context.Context, session ActiveSession) (*GuessOutcome, error) {
	solved := session.Solved()

	result, err := s.store.CreateResult(ctx, DailyResult{
		PlayerID: session.PlayerID,
		Date:     session.Date(),
		Word:     session.Word,
		Guesses:  session.Guesses(),
		Elapsed:  s.clock.Now().UTC().Sub(session.StartTime),
		Fail:     !solved,
	})
	if err != nil {
		return nil, fmt.Errorf("create daily result: %w", err)
	}

	if err := s.store.DeleteActive(ctx, session.PlayerID); err != nil {
		return nil, fmt.Errorf("delete finished session: %w", err)
	}

	if solved {
		completionsSolved.Inc()
	} else {
		completionsFailed.Inc()
	}

	s.logger.Info().
		Str("player_id", session.PlayerID.String()).
		Int("guesses", result.Guesses).
		Bool("fail", result.Fail).
		Msg("daily puzzle completed")

	if s.announcer != nil {
		s.announcer.PuzzleCompleted(ctx, result)
	}

	return &GuessOutcome{State: StateCompleted, Result: &result}, nil
}

// Status reports the player's position in today's puzzle without mutating
// anything, except that a stale session encountered here is also dropped.
func (s *Service) Status(ctx context.Context, player uuid.UUID) (*SessionView, error) {
	today := s.today()

	result, err := s.store.GetResult(ctx, player, today)
	if err != nil {
		return nil, fmt.Errorf("load daily result: %w", err)
	}

	if result != nil {
		// Reveal the answer once the day is decided; reconstruct the
		// board shape from the guess count.
		history := strings.Repeat(maskWord(len(result.Word)), result.Guesses-1)
		if result.Fail {
			history = strings.Repeat(maskWord(len(result.Word)), result.Guesses)
		} else {
			history += result.Word
		}
		return &SessionView{
			Word:         result.Word,
			GuessHistory: history,
			Guesses:      result.Guesses,
			MaxGuesses:   s.catalog.Schema().MaxGuesses,
			Completed:    true,
		}, nil
	}

	sessions, err := s.store.ListActive(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}

	if len(sessions) == 1 && sessions[0].Date().Equal(today) {
		view := s.viewOf(sessions[0], false)
		return &view, nil
	}

	if len(sessions) > 0 {
		// Stale or duplicated; clear it so the next guess starts fresh.
		if err := s.store.DeleteActive(ctx, player); err != nil {
			return nil, fmt.Errorf("delete stale session: %w", err)
		}
	}

	return &SessionView{
		Word:       maskWord(s.catalog.Schema().WordLength),
		Guesses:    0,
		MaxGuesses: s.catalog.Schema().MaxGuesses,
	}, nil
}

func (s *Service) viewOf(session ActiveSession, revealed bool) SessionView {
	word := session.Word
	if !revealed {
		word = maskWord(len(session.Word))
	}
	return SessionView{
		Word:         word,
		GuessHistory: session.GuessHistory,
		Guesses:      session.Guesses(),
		MaxGuesses:   s.catalog.Schema().MaxGuesses,
	}
}
