package main

import (
	"context"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/admin-auth/internal/config"
	"github.com/stemsi/admin-auth/internal/database"
	"github.com/stemsi/admin-auth/internal/handler"
	"github.com/stemsi/admin-auth/internal/logger"
	"github.com/stemsi/admin-auth/internal/notify"
	"github.com/stemsi/admin-auth/internal/router"
	"github.com/stemsi/admin-auth/internal/service"
	"github.com/stemsi/admin-auth/internal/validator"
	"github.com/stemsi/admin-auth/internal/worker"
)

const (
	localMailQueueSize = 256
	purgeInterval      = time.Hour
)

// minSafeCodeSpace is 10^8, below which reset codes get a startup warning.
var minSafeCodeSpace = big.NewInt(100_000_000)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Admin Auth API")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Store ──────────────────────────────────────────────
	stores, err := database.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to store")
	}
	defer stores.Close()

	checks := map[string]handler.HealthCheck{"store": stores.Ping}

	// ─── Mail Queue ────────────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	var queue worker.MailQueue
	if rdb != nil {
		defer rdb.Close()
		queue = worker.NewRedisMailQueue(rdb, config.WorkerKey.ResetMailQueue)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		queue = worker.NewLocalMailQueue(localMailQueueSize)
	}

	var sender worker.ResetCodeSender
	if cfg.SMTPConfigured() {
		sender = notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, log)
	} else {
		log.Warn().Msg("SMTP not configured, reset codes will not be delivered")
		sender = notify.NewLogMailer(log)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}
	codeGen := service.NewResetCodeGenerator(cfg.ResetCodeLength, cfg.ResetCodeCharset)
	if codeGen.Space().Cmp(minSafeCodeSpace) < 0 {
		// No rate limiting in front of verify/reset; see RESET_CODE_CHARSET.
		log.Warn().
			Str("code_space", codeGen.Space().String()).
			Dur("ttl", cfg.ResetCodeTTL).
			Msg("Reset code space is small enough to brute force without rate limiting")
	}

	authService := service.NewAuthService(
		stores.Admins,
		stores.Codes,
		service.NewPasswordHasher(cfg.BcryptCost),
		tokens,
		codeGen,
		queue,
		cfg.JWTExpiry,
		cfg.ResetCodeTTL,
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(authService, log),
		System: handler.NewSystemHandler("Admin Auth API", checks, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	mailWorker := worker.NewResetMailWorker(queue, sender, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		mailWorker.Start(workerCtx)
	}()

	if cfg.ResetCodeRetention > 0 {
		purgeWorker := worker.NewResetCodePurgeWorker(stores.Codes, cfg.ResetCodeRetention, purgeInterval, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			purgeWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers; the mail worker drains its queue first.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
