package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"ranker"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Rating      Rating
	Wordle      Wordle
	Leaderboard Leaderboard
	OAuth       OAuth
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache + pub/sub configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
}

// Rating groups the Elo update constants.
type Rating struct {
	StartRating int `env:"RATING_START" envDefault:"1000"`
	KFactor     int `env:"RATING_K_FACTOR" envDefault:"32"`
}

// Wordle governs the daily puzzle rules.
type Wordle struct {
	WordLength int    `env:"WORDLE_WORD_LENGTH" envDefault:"5"`
	MaxGuesses int    `env:"WORDLE_MAX_GUESSES" envDefault:"6"`
	WordsFile  string `env:"WORDLE_WORDS_FILE"`
}

// Leaderboard controls response caching and board size.
type Leaderboard struct {
	CacheTTL      time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"1m"`
	TopN          int           `env:"LEADERBOARD_TOP" envDefault:"5"`
	TrendDays     int           `env:"LEADERBOARD_TREND_DAYS" envDefault:"7"`
	PubSubChannel string        `env:"LEADERBOARD_PUBSUB_CHANNEL" envDefault:"ranker:updates"`
}

// OAuth holds OAuth provider configuration.
type OAuth struct {
	GoogleClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
