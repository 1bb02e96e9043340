package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/auth"
	"github.com/rankerhq/ranker/internal/auth/jwt"
	"github.com/rankerhq/ranker/internal/config"
	"github.com/rankerhq/ranker/internal/db/repository"
	"github.com/rankerhq/ranker/internal/event"
	"github.com/rankerhq/ranker/internal/leaderboard"
	"github.com/rankerhq/ranker/internal/logging"
	"github.com/rankerhq/ranker/internal/rating"
	"github.com/rankerhq/ranker/internal/server"
	"github.com/rankerhq/ranker/internal/wordle"
	ws "github.com/rankerhq/ranker/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	lbBroadcaster *leaderboard.Broadcaster
	refreshWorker *leaderboard.RefreshWorker
	bgCancels     []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	playerRepo := repository.NewPlayerRepository(pool)
	matchRepo := repository.NewMatchRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)
	wordleRepo := repository.NewWordleRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	tokenCfg := jwt.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		Issuer: cfg.Name,
	}
	authSvc := auth.NewService(playerRepo, tokenCfg, logger)

	var oauthSvc *auth.OAuthService
	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		redirectURL := cfg.OAuth.GoogleRedirectURL
		if redirectURL == "" {
			redirectURL = fmt.Sprintf("http://%s/v1/oauth/google/callback", cfg.HTTPAddr)
		}
		oauthSvc = auth.NewOAuthService(
			cfg.OAuth.GoogleClientID,
			cfg.OAuth.GoogleClientSecret,
			redirectURL,
			logger,
		)
	} else {
		logger.Warn().Msg("google oauth not configured; /v1/oauth routes will reject requests")
	}
	authHandlers := auth.NewHTTPHandlers(authSvc, oauthSvc, logger)

	words, err := wordle.LoadWords(cfg.Wordle.WordsFile)
	if err != nil {
		return nil, fmt.Errorf("load word list: %w", err)
	}
	schema := wordle.GuessSchema{
		WordLength: cfg.Wordle.WordLength,
		MaxGuesses: cfg.Wordle.MaxGuesses,
	}
	catalog, err := wordle.NewCatalog(words, schema, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return nil, fmt.Errorf("build word catalog: %w", err)
	}

	// The leaderboard service depends on the rating service for trends,
	// while the rating service publishes through the leaderboard publisher.
	// The publisher is created first and both sides share it.
	lbOpts := leaderboard.ServiceOptions{
		TopN:      cfg.Leaderboard.TopN,
		TrendDays: cfg.Leaderboard.TrendDays,
		CacheTTL:  cfg.Leaderboard.CacheTTL,
	}

	ratingSvc := rating.NewService(matchRepo, ratingRepo, nil, rating.ServiceOptions{
		StartRating: cfg.Rating.StartRating,
		KFactor:     cfg.Rating.KFactor,
	}, logger)

	lbSvc := leaderboard.NewService(redisClient, ratingRepo, ratingSvc, matchRepo, playerRepo, lbOpts, logger)
	publisher := leaderboard.NewPublisher(redisClient, lbSvc, cfg.Leaderboard.PubSubChannel, logger)
	ratingSvc.SetPublisher(publisher)

	wordleSvc := wordle.NewService(wordleRepo, catalog, wordle.SystemClock(), publisher, logger)
	eventSvc := event.NewService(eventRepo, matchRepo, playerRepo, ratingSvc, logger)

	wsHub := ws.NewHub(logger)
	lbBroadcaster := leaderboard.NewBroadcaster(redisClient, wsHub, cfg.Leaderboard.PubSubChannel, logger)
	refreshWorker := leaderboard.NewRefreshWorker(lbSvc, cfg.Leaderboard.CacheTTL, logger)

	handlers := server.Handlers{
		Auth:        authHandlers,
		Rating:      rating.NewHTTPHandlers(ratingSvc, matchRepo, playerRepo, logger),
		Wordle:      wordle.NewHTTPHandlers(wordleSvc, wordleRepo, logger),
		Leaderboard: leaderboard.NewHTTPHandlers(lbSvc, logger),
		Event:       event.NewHTTPHandlers(eventSvc, logger),
		Live:        server.NewLiveHandler(wsHub, logger),
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, authSvc, handlers)

	return &Application{
		cfg:           cfg,
		logger:        logger,
		pool:          pool,
		redis:         redisClient,
		http:          apiServer,
		lbBroadcaster: lbBroadcaster,
		refreshWorker: refreshWorker,
		bgCancels:     make([]context.CancelFunc, 0, 2),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.lbBroadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.lbBroadcaster.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard broadcaster stopped")
			}
		}()
	}

	if a.refreshWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.refreshWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard refresh worker stopped")
			}
		}()
	}
}
