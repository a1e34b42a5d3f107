package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()

	if !cfg.Enabled {
		t.Fatal("limiter should default to enabled")
	}
	if cfg.Capacity != 5 {
		t.Fatalf("capacity = %d, want 5", cfg.Capacity)
	}
	if cfg.RefillInterval != time.Minute {
		t.Fatalf("refill interval = %s, want 1m", cfg.RefillInterval)
	}
	if cfg.TTL != 15*time.Minute {
		t.Fatalf("ttl = %s, want 15m", cfg.TTL)
	}
	if cfg.KeyStrategy != "ip_route" {
		t.Fatalf("key strategy = %q, want ip_route", cfg.KeyStrategy)
	}
}

func TestLoadRateLimitConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "12")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "30s")
	t.Setenv("RATE_LIMIT_TTL", "1s") // below 5×interval, gets clamped

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 12 {
		t.Fatalf("capacity = %d, want 12", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 || cfg.RefillInterval != 30*time.Second {
		t.Fatalf("refill = %d per %s, want 1 per 30s", cfg.RefillTokens, cfg.RefillInterval)
	}
	if want := 5 * 30 * time.Second; cfg.TTL != want {
		t.Fatalf("ttl = %s, want clamped %s", cfg.TTL, want)
	}
}

func TestLoadRateLimitConfigDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	if cfg := LoadRateLimitConfig(); cfg.Enabled {
		t.Fatal("RATE_LIMIT_ENABLED=false should disable the limiter")
	}
}
