package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankerhq/ranker/internal/auth/jwt"
	"github.com/rankerhq/ranker/internal/db/repository"
)

type stubPlayerStore struct {
	players map[uuid.UUID]repository.Player
}

func newStubPlayerStore() *stubPlayerStore {
	return &stubPlayerStore{players: make(map[uuid.UUID]repository.Player)}
}

func (s *stubPlayerStore) Create(_ context.Context, p repository.Player) (repository.Player, error) {
	for _, existing := range s.players {
		if existing.Email == p.Email {
			return repository.Player{}, repository.ErrDuplicate
		}
	}
	p.ID = uuid.New()
	s.players[p.ID] = p
	return p, nil
}

func (s *stubPlayerStore) GetByID(_ context.Context, id uuid.UUID) (repository.Player, error) {
	p, ok := s.players[id]
	if !ok {
		return repository.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *stubPlayerStore) GetByEmail(_ context.Context, email string) (repository.Player, error) {
	for _, p := range s.players {
		if p.Email == email {
			return p, nil
		}
	}
	return repository.Player{}, repository.ErrNotFound
}

func (s *stubPlayerStore) UpdateLogin(_ context.Context, _ uuid.UUID) error { return nil }

func newTestService() (*Service, *stubPlayerStore) {
	store := newStubPlayerStore()
	svc := NewService(store, jwt.TokenConfig{Secret: []byte("test-secret")}, zerolog.Nop())
	return svc, store
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, len(hash) > 20) // bcrypt hashes are long
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("testpassword123")

	err := VerifyPassword(hash, "testpassword123")
	assert.NoError(t, err)

	err = VerifyPassword(hash, "wrongpassword")
	assert.Error(t, err)
}

func TestPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
	assert.Equal(t, ErrPasswordTooShort, err)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	account, tokens, err := svc.Register(ctx, RegisterRequest{
		Email:       "alice@example.com",
		Password:    "correct-horse",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", account.DisplayName)
	assert.Equal(t, ProviderLocal, account.Provider)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	loggedIn, _, err := svc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, account.ID, loggedIn.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterRequest{Email: "bob@example.com", Password: "password123", DisplayName: "Bob"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, RegisterRequest{Email: "BOB@example.com", Password: "password123", DisplayName: "Bob Again"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterRequest{Email: "carol@example.com", Password: "password123", DisplayName: "Carol"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "carol@example.com", Password: "nope-nope-nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "unknown@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	account, tokens, err := svc.Register(ctx, RegisterRequest{Email: "dave@example.com", Password: "password123", DisplayName: "Dave"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.PlayerID)
	assert.Equal(t, "Dave", claims.DisplayName)

	// A refresh token must not pass as an access token.
	_, err = svc.ValidateToken(tokens.RefreshToken)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	account, tokens, err := svc.Register(ctx, RegisterRequest{Email: "erin@example.com", Password: "password123", DisplayName: "Erin"})
	require.NoError(t, err)

	fresh, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// A deleted account cannot refresh.
	delete(store.players, account.ID)
	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.Error(t, err)
}

func TestOAuthLoginCreatesAccountOnce(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	info := OAuthUserInfo{ProviderID: "g-123", Email: "Frank@example.com", Name: "Frank"}

	first, _, err := svc.LoginOAuth(ctx, ProviderGoogle, info)
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, first.Provider)
	assert.Equal(t, "frank@example.com", first.Email)

	second, _, err := svc.LoginOAuth(ctx, ProviderGoogle, info)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.players, 1)
}
