package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AccessTokenTTL != 7*24*time.Hour || cfg.RefreshTokenTTL != 30*24*time.Hour {
		t.Fatalf("ttl: got access=%s refresh=%s", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.Economy.TokensPerLesson != 20 || cfg.Economy.InitialUserTokens != 100 || cfg.Economy.PurchaseCurrency != "usd" {
		t.Fatalf("economy: got=%+v", cfg.Economy)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.test" {
		t.Fatalf("cors: got=%v", cfg.CORSOrigins)
	}
	if cfg.ReconcileCron != "0 3 * * *" {
		t.Fatalf("reconcile cron: want=%q got=%q", "0 3 * * *", cfg.ReconcileCron)
	}
	if cfg.Addr() != ":5000" {
		t.Fatalf("addr: want=:5000 got=%s", cfg.Addr())
	}
}

func TestLoadConfigEconomyOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "economy.yaml")
	if err := os.WriteFile(path, []byte("tokens_per_lesson: 35\nreferral_tokens: 0\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DAILY_CHALLENGE_TOKENS", "12")
	t.Setenv("ECONOMY_CONFIG_PATH", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Economy.TokensPerLesson != 35 {
		t.Fatalf("overlay tokens_per_lesson: want=35 got=%d", cfg.Economy.TokensPerLesson)
	}
	if cfg.Economy.ReferralTokens != 0 {
		t.Fatalf("overlay referral_tokens: want=0 got=%d", cfg.Economy.ReferralTokens)
	}
	if cfg.Economy.DailyChallengeTokens != 12 {
		t.Fatalf("env value kept under overlay: want=12 got=%d", cfg.Economy.DailyChallengeTokens)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{}},
		{"bad driver", map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "mysql"}},
		{"zero lesson price", map[string]string{"JWT_SECRET": "x", "TOKENS_PER_LESSON": "0"}},
		{"sample ratio", map[string]string{"JWT_SECRET": "x", "OTEL_SAMPLER_RATIO": "1.5"}},
		{"bad duration", map[string]string{"JWT_SECRET": "x", "SHUTDOWN_TIMEOUT": "soon"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadConfigMissingOverlayFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("ECONOMY_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for missing overlay file")
	}
}
