package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-distribution-backend/config"
	"food-distribution-backend/database"
	"food-distribution-backend/events"
	"food-distribution-backend/firebase"
	"food-distribution-backend/identity"
	"food-distribution-backend/logger"
	"food-distribution-backend/middleware"
	"food-distribution-backend/notify"
	"food-distribution-backend/repository"
	"food-distribution-backend/routes"
	"food-distribution-backend/services"
	"food-distribution-backend/session"
	"food-distribution-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	config.LoadEnv()
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "food-distribution-backend")
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	// Validate critical environment variables
	if err := config.ValidateEnv(log); err != nil {
		log.Fatal("Environment validation failed", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Storage and identity backend
	var (
		db       *gorm.DB
		clients  *firebase.Clients
		store    *repository.Store
		provider identity.Provider
	)
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		clients, err = firebase.Init(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials, log)
		if err != nil {
			log.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		store = repository.NewFirestoreStore(clients.Firestore)
		provider = firebase.NewIdentityProvider(cfg.FirebaseAPIKey, clients.Auth, log)
	default:
		db, err = database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		store = repository.NewGormStore(db)
		provider = identity.NewLocalProvider(db)
	}

	// Event bus, optionally shared across instances through Redis
	bus := events.NewBus(events.DefaultBuffer)
	var revoker session.Revoker = session.NewMemoryRevoker()
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		rdb = redis.NewClient(opts)
		revoker = session.NewRedisRevoker(rdb)
		if err := events.NewRedisRelay(rdb, bus, log).Start(ctx); err != nil {
			log.Warn("Redis event relay unavailable, events stay in-process", zap.Error(err))
		}
	}

	svc := services.New(services.Options{
		Store:    store,
		Identity: provider,
		Revoker:  revoker,
		Bus:      bus,
		Sink:     notify.Multi{notify.LogSink{Log: log}, notify.BusSink{Bus: bus}},
		Mailer: notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log),
		Tokens: utils.NewTokenGenerator(cfg.TokenPrefix),
		Log:    log,
	})

	// Create default super admin if not exists
	if err := svc.Sessions.BootstrapSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword, cfg.SuperAdminName); err != nil {
		log.Warn("Could not create default super admin", zap.Error(err))
	}

	// Setup Gin router
	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	// Setup routes
	limiter := routes.SetupRoutes(r, routes.Deps{
		Services:       svc,
		Bus:            bus,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})
	defer limiter.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		log.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("backend", cfg.StoreBackend),
			zap.Duration("session_ttl", cfg.SessionTTL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("Error closing redis client", zap.Error(err))
		}
	}
	if err := clients.Close(); err != nil {
		log.Warn("Error closing Firebase clients", zap.Error(err))
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("Error closing database connection", zap.Error(err))
			} else {
				log.Info("Database connection closed")
			}
		}
	}

	log.Info("Server exited gracefully")
}
