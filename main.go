package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelleylegion/config"
	"shelleylegion/eventstatus"
	"shelleylegion/middleware"
	"shelleylegion/server"
	"shelleylegion/services"
	"shelleylegion/storage"
)

func main() {
	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	passwordHash := cfg.Admin.PasswordHash
	if passwordHash == "" {
		log.Println("WARNING: ADMIN_PASSWORD is set in plain text; use ADMIN_PASSWORD_HASH (legionctl hash-password)")
		if passwordHash, err = services.HashPassword(cfg.Admin.Password); err != nil {
			log.Fatalf("FATAL: hash admin password: %v", err)
		}
	}

	session, err := services.NewAdminSession(services.AdminSessionConfig{
		Secret:       cfg.Admin.JWTSecret,
		Username:     cfg.Admin.Username,
		PasswordHash: passwordHash,
		TTL:          cfg.Admin.SessionTTL,
	})
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// Open the storage backend
	ctx := context.Background()
	backend, closeBackend, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		log.Fatalf("FATAL: open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer func() {
		if err := closeBackend(); err != nil {
			log.Printf("⚠️  Closing storage: %v", err)
		}
	}()

	store := services.NewContentStore(backend, cfg.Storage.Timeout)

	deps := server.Deps{
		Store:       store,
		Session:     session,
		Clock:       eventstatus.SystemClock{},
		CORSOrigins: cfg.CORSOrigins,
		Production:  cfg.IsProduction(),
		AccessLog:   true,
	}
	if cfg.RateLimit.Enabled {
		deps.Limiter = middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
		deps.AuthLimiter = middleware.NewRateLimiter(cfg.RateLimit.AuthMaxRequests, cfg.RateLimit.AuthWindow())
	}
	app := server.New(deps)

	// Graceful shutdown
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("🛑 Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️  Shutdown: %v", err)
		}
	}()

	log.Printf("🚀 HTTP server starting on port %s", cfg.Port)
	log.Printf("📊 Environment: %s", cfg.AppEnv)
	log.Printf("💾 Storage backend: %s", store.BackendName())
	log.Printf("🔐 Admin user: %s (session TTL %s)", cfg.Admin.Username, cfg.Admin.SessionTTL)
	log.Printf("⏱️  Rate limiting: %v", cfg.RateLimit.Enabled)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("Failed to start HTTP server: %v", err)
	}
}
