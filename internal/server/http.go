package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/auth"
	"github.com/rankerhq/ranker/internal/config"
	"github.com/rankerhq/ranker/internal/event"
	"github.com/rankerhq/ranker/internal/leaderboard"
	"github.com/rankerhq/ranker/internal/rating"
	"github.com/rankerhq/ranker/internal/wordle"
	httperrors "github.com/rankerhq/ranker/pkg/http/errors"
)

// Handlers collects the per-package HTTP handlers the server mounts.
type Handlers struct {
	Auth        *auth.HTTPHandlers
	Rating      *rating.HTTPHandlers
	Wordle      *wordle.HTTPHandlers
	Leaderboard *leaderboard.HTTPHandlers
	Event       *event.HTTPHandlers
	Live        http.HandlerFunc
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, authSvc *auth.Service, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, rdb); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Dependency unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	if h.Auth != nil {
		mux.HandleFunc("/v1/auth/register", h.Auth.Register)
		mux.HandleFunc("/v1/auth/login", h.Auth.Login)
		mux.HandleFunc("/v1/auth/refresh", h.Auth.RefreshToken)
		mux.Handle("/v1/auth/me", auth.RequireAuth(http.HandlerFunc(h.Auth.Me)))
		mux.HandleFunc("/v1/oauth/google/start", h.Auth.OAuthStart)
		mux.HandleFunc("/v1/oauth/google/callback", h.Auth.OAuthCallback)
	}

	if h.Rating != nil {
		mux.HandleFunc("/v1/matches", h.Rating.RecordMatch)
		mux.HandleFunc("/v1/matches/recent", h.Rating.RecentMatches)
		mux.HandleFunc("/v1/matches/", h.Rating.CorrectMatch)
		mux.HandleFunc("/v1/players", h.Rating.Players)
		mux.HandleFunc("/v1/players/", playerRouter(h.Rating))
	}

	if h.Leaderboard != nil {
		mux.HandleFunc("/v1/leaderboard", h.Leaderboard.Overview)
	}

	if h.Wordle != nil {
		mux.Handle("/v1/wordle/guess", auth.RequireAuth(http.HandlerFunc(h.Wordle.Guess)))
		mux.Handle("/v1/wordle/status", auth.RequireAuth(http.HandlerFunc(h.Wordle.Status)))
		mux.Handle("/v1/wordle/results", auth.RequireAuth(http.HandlerFunc(h.Wordle.Results)))
		mux.HandleFunc("/v1/wordle/today", h.Wordle.Today)
		mux.HandleFunc("/v1/wordle/leaders", h.Wordle.Leaders)
		mux.HandleFunc("/v1/wordle/shame", h.Wordle.WallOfShame)
	}

	if h.Event != nil {
		mux.HandleFunc("/v1/events", h.Event.List)
		mux.HandleFunc("/v1/events/", h.Event.Get)
	}

	if h.Live != nil {
		mux.HandleFunc("/ws/live", h.Live)
	}

	var root http.Handler = mux
	if authSvc != nil {
		root = auth.Middleware(authSvc, logger)(mux)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: root,
	}
}

// playerRouter dispatches /v1/players/{id}/{section} to the right handler.
func playerRouter(h *rating.HTTPHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/rating"):
			h.PlayerRating(w, r)
		case strings.HasSuffix(r.URL.Path, "/rating-history"):
			h.RatingHistory(w, r)
		case strings.HasSuffix(r.URL.Path, "/matches"):
			h.PlayerMatches(w, r)
		case strings.HasSuffix(r.URL.Path, "/stats"):
			h.PlayerStats(w, r)
		default:
			// Bare /v1/players/{id} is the player detail view.
			h.PlayerDetail(w, r)
		}
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}
