package config

import (
	"strings"
	"testing"

	"github.com/Billy-Davies-2/scorebored/internal/match"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "3000" || cfg.GRPCPort != "50051" {
		t.Errorf("unexpected ports %s/%s", cfg.Port, cfg.GRPCPort)
	}
	if cfg.DBDriver != "memory" {
		t.Errorf("expected memory driver, got %s", cfg.DBDriver)
	}
	if cfg.NATSSubject != "scoreboard.events" {
		t.Errorf("unexpected NATS subject %s", cfg.NATSSubject)
	}
	if cfg.GameLength != match.TwentyOne || cfg.MatchLength != match.One {
		t.Errorf("unexpected match config %s/%s", cfg.GameLength, cfg.MatchLength)
	}
	if cfg.HomeTeam != "Home Team" || cfg.AwayTeam != "Away Team" {
		t.Errorf("unexpected team names %q/%q", cfg.HomeTeam, cfg.AwayTeam)
	}
	if !cfg.IsDevelopment() {
		t.Error("empty ENVIRONMENT should mean development")
	}
	if cfg.TelegramEnabled() || cfg.Authentik.Complete() {
		t.Error("optional integrations should be off by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("GAME_LENGTH", "eleven")
	t.Setenv("MATCH_LENGTH", "bo5")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")
	t.Setenv("AUTHENTIK_BASE_URL", "https://auth.example.com")
	t.Setenv("AUTHENTIK_CLIENT_ID", "scorebored")
	t.Setenv("AUTHENTIK_CLIENT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("production should not be development")
	}
	if cfg.GameLength != match.Eleven || cfg.MatchLength != match.BestOfFive {
		t.Errorf("unexpected match config %s/%s", cfg.GameLength, cfg.MatchLength)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.RedisDB)
	}
	if !cfg.TelegramEnabled() || cfg.TelegramChatID != -1001 {
		t.Errorf("telegram should be enabled for chat -1001, got %d", cfg.TelegramChatID)
	}
	if !cfg.Authentik.Complete() || cfg.Authentik.RedirectURL != "http://localhost:3000/auth/callback" {
		t.Errorf("unexpected authentik config %+v", cfg.Authentik)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad game length", map[string]string{"GAME_LENGTH": "fifteen"}, "parse env:"},
		{"bad redis db", map[string]string{"REDIS_DB": "zero"}, "parse env:"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, "unknown DB_DRIVER"},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres"}, "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}
