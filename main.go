package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sql-career-engine/config"
	"sql-career-engine/handlers"
	"sql-career-engine/logger"
	"sql-career-engine/middleware"
	"sql-career-engine/models"
	"sql-career-engine/services"
	"sql-career-engine/utils"
	"sql-career-engine/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !cfg.EnvFileLoaded {
		log.Warn("no .env file found, reading environment variables directly")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	challengeService := services.NewChallengeService(db, log)
	if err := challengeService.Seed(ctx); err != nil {
		log.Fatal("failed to seed starter career", "error", err)
	}

	var bus services.EventBus
	if cfg.RedisAddr != "" {
		bus, err = services.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel, log)
		if err != nil {
			log.Fatal("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set, attempt events stay in-process")
		bus = services.NewMemoryBus(log)
	}
	defer bus.Close()

	badgeService := services.NewBadgeService(db, log)
	progressionService := services.NewProgressionService(db, badgeService, bus, log)
	leaderboardService := services.NewLeaderboardService(db, badgeService, log)

	if err := workers.NewLeaderboardFeedWorker(bus, leaderboardService, log).Start(ctx); err != nil {
		log.Fatal("failed to start leaderboard feed", "error", err)
	}

	if cfg.SyncServiceURL != "" {
		workers.NewProfileSyncWorker(db, leaderboardService, cfg.SyncServiceURL, cfg.GatewayToken, cfg.SyncInterval, utils.HTTPClient, log).Start(ctx)
	} else {
		log.Warn("SYNC_SERVICE_URL not set, profile sync disabled")
	}

	var uploader services.SnapshotUploader
	if cfg.R2.Enabled() {
		exporter, err := utils.NewR2Exporter(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client", "error", err)
		}
		uploader = exporter
	}
	scheduler, err := services.NewScheduler(leaderboardService, uploader, cfg.LeaderboardRefreshInterval, log)
	if err != nil {
		log.Fatal("failed to create scheduler", "error", err)
	}
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("failed to start scheduler", "error", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// every request must come through the gateway
	app.Use(middleware.GatewayAuthMiddleware(cfg.GatewayToken, log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.OriginsHeader(),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-Username, X-User-Region, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupChallengeRoutes(app, challengeService, log)
	handlers.SetupLeaderboardRoutes(app, leaderboardService, log)
	handlers.SetupProgressionRoutes(app, progressionService, badgeService, log)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Error("server error", "error", err)
			stop()
		}
	}()
	log.Info("server running", "addr", cfg.Addr(), "origins", cfg.OriginsHeader(), "r2_export", cfg.R2.Enabled())

	<-ctx.Done()
	log.Info("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server shutdown", "error", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Error("scheduler shutdown", "error", err)
	}
}
