package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/soltab/soltab/internal/config"
	"github.com/soltab/soltab/internal/invite"
	"github.com/soltab/soltab/internal/runtime"
	"github.com/soltab/soltab/internal/store"
	"github.com/soltab/soltab/internal/store/memory"
	"github.com/soltab/soltab/internal/store/sqlite"
	"github.com/soltab/soltab/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var st store.Store
	switch cfg.Backend {
	case "memory":
		st = memory.New()
		slog.Info("Storage initialized", "backend", "memory")
	default:
		st, err = sqlite.New(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize storage", "error", err)
			os.Exit(1)
		}
		slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.DBPath)
	}
	defer st.Close()

	rt := runtime.New(st, runtime.Options{
		RequireSignatures: cfg.RequireSignatures,
		DevPriceFallback:  cfg.DevPriceFallback,
	})
	if cfg.DevPriceFallback {
		slog.Warn("Oracle development fallback enabled; refunds may use the stub price")
	}
	if !cfg.RequireSignatures {
		slog.Warn("Envelope signature verification disabled")
	}

	invites := invite.NewManager(cfg.InviteSecret, cfg.InviteTTL)
	server := NewServer(rt, invites, cfg.FaucetEnabled)

	corsHandler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(server.Routes())

	// HTTP/2 without TLS, for clients that multiplex command streams.
	h2cHandler := h2c.NewHandler(corsHandler, &http2.Server{})

	slog.Info("Gateway starting", "address", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
