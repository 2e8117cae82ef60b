// Package config loads gateway configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the gateway needs to start.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// Backend selects the store: "sqlite" or "memory".
	Backend string

	// DBPath is the SQLite database path when Backend is "sqlite".
	DBPath string

	// RequireSignatures enforces ed25519 envelope verification.
	RequireSignatures bool

	// DevPriceFallback substitutes the stub oracle price when no usable
	// update exists. Development only.
	DevPriceFallback bool

	// FaucetEnabled exposes the deposit endpoint. Development only.
	FaucetEnabled bool

	// InviteSecret signs invitation tokens.
	InviteSecret string

	// InviteTTL is how long minted invitations stay valid.
	InviteTTL time.Duration
}

// Load reads configuration, loading .env first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env", "error", err)
	}

	cfg := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		Backend:           getEnv("STORE_BACKEND", "sqlite"),
		DBPath:            getEnv("DB_PATH", "./data/soltab.db"),
		RequireSignatures: getEnvBool("REQUIRE_SIGNATURES", true),
		DevPriceFallback:  getEnvBool("ORACLE_DEV_FALLBACK", false),
		FaucetEnabled:     getEnvBool("FAUCET_ENABLED", false),
		InviteSecret:      getEnv("INVITE_SECRET", ""),
		InviteTTL:         getEnvDuration("INVITE_TTL", 72*time.Hour),
	}

	if cfg.Backend != "sqlite" && cfg.Backend != "memory" {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}
	if cfg.InviteSecret == "" {
		return nil, fmt.Errorf("INVITE_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Invalid boolean in environment", "key", key, "value", value)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration in environment", "key", key, "value", value)
		return fallback
	}
	return d
}
