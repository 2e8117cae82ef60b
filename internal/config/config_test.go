package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INVITE_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	if !cfg.RequireSignatures {
		t.Error("RequireSignatures should default to true")
	}
	if cfg.DevPriceFallback || cfg.FaucetEnabled {
		t.Error("development toggles should default to off")
	}
	if cfg.InviteTTL != 72*time.Hour {
		t.Errorf("InviteTTL = %v, want 72h", cfg.InviteTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INVITE_SECRET", "secret")
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("REQUIRE_SIGNATURES", "false")
	t.Setenv("ORACLE_DEV_FALLBACK", "true")
	t.Setenv("INVITE_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":9999" || cfg.Backend != "memory" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RequireSignatures {
		t.Error("RequireSignatures should be off")
	}
	if !cfg.DevPriceFallback {
		t.Error("DevPriceFallback should be on")
	}
	if cfg.InviteTTL != time.Hour {
		t.Errorf("InviteTTL = %v, want 1h", cfg.InviteTTL)
	}
}

func TestLoadRejections(t *testing.T) {
	t.Run("missing invite secret", func(t *testing.T) {
		t.Setenv("INVITE_SECRET", "")
		if _, err := Load(); err == nil {
			t.Error("Load accepted an empty INVITE_SECRET")
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("INVITE_SECRET", "secret")
		t.Setenv("STORE_BACKEND", "postgres")
		if _, err := Load(); err == nil {
			t.Error("Load accepted an unknown backend")
		}
	})
}

func TestGetEnvBoolFallback(t *testing.T) {
	t.Setenv("SOME_FLAG", "not-a-bool")
	if got := getEnvBool("SOME_FLAG", true); !got {
		t.Error("invalid boolean should fall back to the default")
	}
}
