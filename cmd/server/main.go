package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/revival/clans/internal/config"
	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/handler"
	"github.com/revival/clans/internal/jobs"
	"github.com/revival/clans/internal/repository"
	"github.com/revival/clans/internal/service"
	"github.com/revival/clans/pkg/jwt"
	"github.com/revival/clans/pkg/ticket"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the store backend
	var store database.Store
	switch cfg.Store.Backend {
	case "redis":
		store = database.NewRedis(database.Config{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
	default:
		store = database.NewMemory()
	}

	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		slog.Error("failed to connect to store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	slog.Info("connected to store", slog.String("backend", cfg.Store.Backend))

	// Ticket verification needs the emulator network's public key.
	rpcnPEM, err := os.ReadFile(cfg.Ticket.RPCNKeyPath)
	if err != nil {
		slog.Error("failed to read RPCN public key",
			slog.String("path", cfg.Ticket.RPCNKeyPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	verifier, err := ticket.NewVerifier(rpcnPEM)
	if err != nil {
		slog.Error("failed to load RPCN public key", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Admin tokens; nil disables the admin surface.
	var tokens *jwt.Service
	if cfg.Admin.TokenSecret != "" {
		tokens = jwt.NewService([]byte(cfg.Admin.TokenSecret), cfg.Admin.TokenIssuer, cfg.Admin.TokenLifetime)
	} else {
		slog.Warn("ADMIN_TOKEN_SECRET not set; admin surface disabled")
	}

	// Initialize repositories
	clanRepo := repository.NewClanRepository(store)
	membershipRepo := repository.NewMembershipRepository(store)
	blacklistRepo := repository.NewBlacklistRepository(store)
	announcementRepo := repository.NewAnnouncementRepository(store)

	// Initialize the engine
	registry := service.NewRegistry(clanRepo, membershipRepo, cfg.Clans.CreateEvery)
	engine := service.NewEngine(service.EngineConfig{
		Registry:      registry,
		Membership:    service.NewMembership(membershipRepo, clanRepo, blacklistRepo, registry),
		Blacklist:     service.NewBlacklist(blacklistRepo),
		Announcements: service.NewAnnouncements(announcementRepo, clanRepo),
		Clans:         clanRepo,
	})

	// Background jobs
	sweeper := jobs.NewAnnouncementSweeper(engine, cfg.Clans.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		Engine:         engine,
		Store:          store,
		Verifier:       verifier,
		Tokens:         tokens,
		AdminRateRPS:   cfg.Admin.RateLimitRPS,
		AdminRateBurst: cfg.Admin.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
