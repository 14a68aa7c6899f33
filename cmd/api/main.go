package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workshop-intake/internal/auth"
	"workshop-intake/internal/bookings"
	"workshop-intake/internal/calls"
	"workshop-intake/internal/config"
	"workshop-intake/internal/httpapi"
	"workshop-intake/internal/notify"
	"workshop-intake/internal/reporting"
	"workshop-intake/internal/voiceai"
	"workshop-intake/internal/workshops"
	"workshop-intake/pkg/logger"
	"workshop-intake/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local-dev convenience; deployed environments inject real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	directory := workshops.NewDirectory(workshops.NewRepository(db), rdb)

	var slots calls.CallSlots
	if cfg.Voice.MaxConcurrentCalls > 0 {
		slots = calls.NewRedisCallSlots(rdb, cfg.Voice.MaxConcurrentCalls)
	}

	callService := calls.NewService(
		db,
		directory,
		bookings.NewEngine(),
		notify.NewDispatcher(cfg.Notify.BookingServiceURL),
		slots,
		voiceai.NewAssistantBuilder(cfg.WebhookCallbackURL()),
	)

	verifier := voiceai.NewSignatureVerifier(cfg.Voice.WebhookSecret, cfg.VerifyWebhookSignatures())
	if !verifier.Enabled {
		log.Warn("webhook signature verification disabled", "env", cfg.App.Env)
	}

	h := httpapi.Handlers{
		Auth:         authManager,
		Calls:        callService,
		Stats:        reporting.NewService(db),
		Verifier:     verifier,
		IntakeAPIKey: cfg.Auth.IntakeAPIKey,
		DB:           db,
		Redis:        rdb,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
