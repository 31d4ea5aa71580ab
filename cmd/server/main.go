package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lp-dev-web/lebonrecoin/data"
	"github.com/lp-dev-web/lebonrecoin/internal/config"
	"github.com/lp-dev-web/lebonrecoin/internal/database"
	"github.com/lp-dev-web/lebonrecoin/internal/logger"
	"github.com/lp-dev-web/lebonrecoin/internal/server"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"go.uber.org/zap"

	_ "github.com/lp-dev-web/lebonrecoin/docs/api" // Swagger docs
)

// @title LeBonRecoin API
// @version 1.0.0
// @description Classifieds marketplace: accounts, addresses, ads with pictures, search and favorites
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/lp-dev-web/lebonrecoin

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// A missing .env is fine, the environment wins anyway
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.Init(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Connect to database
	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	if cfg.SeedReferenceData {
		if err := database.SeedReferenceData(db, data.ReferenceData); err != nil {
			zlog.Fatal("failed to seed reference data", zap.Error(err))
		}
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to initialize picture storage", zap.Error(err))
	}

	app := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Storage:  store,
		Log:      zlog,
		Hasher:   services.BcryptHasher{Cost: cfg.BcryptCost},
		Sessions: &services.SessionManager{Secret: []byte(cfg.SessionSecret), TTL: cfg.SessionTTL},
		Metrics:  true,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		zlog.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	// Start server
	zlog.Info("starting server", zap.String("port", cfg.Port), zap.String("db_type", cfg.DBType), zap.String("storage", cfg.StorageDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}

	zlog.Info("server stopped")
}
