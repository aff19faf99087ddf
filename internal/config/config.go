package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/Billy-Davies-2/scorebored/internal/match"
)

// Config is the process configuration read from the environment.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENVIRONMENT"`

	Port     string `env:"PORT" envDefault:"3000"`
	GRPCPort string `env:"GRPC_PORT" envDefault:"50051"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"memory"`
	SQLiteFile  string `env:"SQLITE_FILE" envDefault:"dev.sqlite"`
	DatabaseURL string `env:"DATABASE_URL"`

	NATSURL     string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"scoreboard.events"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	Authentik AuthentikConfig `envPrefix:"AUTHENTIK_"`

	GameLength  match.GameLength  `env:"GAME_LENGTH" envDefault:"twenty_one"`
	MatchLength match.MatchLength `env:"MATCH_LENGTH" envDefault:"one"`
	HomeTeam    string            `env:"HOME_TEAM" envDefault:"Home Team"`
	AwayTeam    string            `env:"AWAY_TEAM" envDefault:"Away Team"`
}

type AuthentikConfig struct {
	BaseURL      string `env:"BASE_URL"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:3000/auth/callback"`
}

// Complete reports whether every credential needed for the OAuth2 flow is set.
func (a AuthentikConfig) Complete() bool {
	return a.BaseURL != "" && a.ClientID != "" && a.ClientSecret != ""
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	switch cfg.DBDriver {
	case "memory", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unknown DB_DRIVER %q (valid: memory, sqlite, postgres)", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	return cfg, nil
}

// IsDevelopment reports whether local stand-ins (embedded NATS, mock auth)
// should replace the real services.
func (c Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// TelegramEnabled reports whether commentary should be mirrored to a chat.
func (c Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}
