package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/auth/jwt"
	"github.com/rankerhq/ranker/internal/db/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PlayerStore are the account operations the auth flows need.
type PlayerStore interface {
	Create(ctx context.Context, p repository.Player) (repository.Player, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Player, error)
	GetByEmail(ctx context.Context, email string) (repository.Player, error)
	UpdateLogin(ctx context.Context, id uuid.UUID) error
}

// Service handles authentication and account management.
type Service struct {
	players  PlayerStore
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// NewService creates an authentication service.
func NewService(players PlayerStore, tokenCfg jwt.TokenConfig, logger zerolog.Logger) *Service {
	return &Service{
		players:  players,
		tokenMgr: jwt.NewManager(tokenCfg),
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a new local account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("valid email required")
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, nil, fmt.Errorf("display name required")
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	player, err := s.players.Create(ctx, repository.Player{
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: passwordHash,
		Provider:     ProviderLocal,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create player: %w", err)
	}

	account := accountOf(player)
	tokens, err := s.generateTokenPair(account)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("player_id", player.ID.String()).Msg("player registered")
	return &account, tokens, nil
}

// Login authenticates a player with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Account, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	player, err := s.players.GetByEmail(ctx, email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, nil, ErrInvalidCredentials
	}
	if player.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(player.PasswordHash, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.players.UpdateLogin(ctx, player.ID); err != nil {
		s.logger.Warn().Err(err).Str("player_id", player.ID.String()).Msg("failed to record login time")
	}

	account := accountOf(player)
	tokens, err := s.generateTokenPair(account)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("player_id", player.ID.String()).Msg("player logged in")
	return &account, tokens, nil
}

// LoginOAuth finds or creates the account for an external identity and
// issues tokens. OAuth accounts have no local password.
func (s *Service) LoginOAuth(ctx context.Context, provider string, info OAuthUserInfo) (*Account, *TokenPair, error) {
	if info.Email == "" {
		return nil, nil, fmt.Errorf("oauth provider did not return an email")
	}

	email := strings.ToLower(info.Email)
	player, err := s.players.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		name := info.Name
		if name == "" {
			name = email
		}
		player, err = s.players.Create(ctx, repository.Player{
			Email:       email,
			DisplayName: name,
			Provider:    provider,
		})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("oauth account: %w", err)
	}

	if err := s.players.UpdateLogin(ctx, player.ID); err != nil {
		s.logger.Warn().Err(err).Str("player_id", player.ID.String()).Msg("failed to record login time")
	}

	account := accountOf(player)
	tokens, err := s.generateTokenPair(account)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("player_id", player.ID.String()).Str("provider", provider).Msg("oauth login")
	return &account, tokens, nil
}

// RefreshToken generates a new token pair from a refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	// The account must still exist.
	player, err := s.players.GetByID(ctx, claims.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("player not found")
	}

	return s.generateTokenPair(accountOf(player))
}

// ValidateToken validates an access token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

// Me fetches the account behind a set of claims.
func (s *Service) Me(ctx context.Context, playerID uuid.UUID) (*Account, error) {
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	account := accountOf(player)
	return &account, nil
}

func accountOf(p repository.Player) Account {
	return Account{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Provider:    p.Provider,
	}
}

func (s *Service) generateTokenPair(account Account) (*TokenPair, error) {
	sub := jwt.Subject{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
	}

	accessToken, err := s.tokenMgr.GenerateAccessToken(sub)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenMgr.GenerateRefreshToken(sub)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(time.Hour / time.Second),
	}, nil
}
