package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ksys/admission-service/internal/cache"
	"github.com/ksys/admission-service/internal/config"
	"github.com/ksys/admission-service/internal/events"
	"github.com/ksys/admission-service/internal/handlers"
	"github.com/ksys/admission-service/internal/repositories/casdoor"
	"github.com/ksys/admission-service/internal/repositories/postgres"
	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
	"github.com/ksys/admission-service/internal/validator"
	"github.com/ksys/admission-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis is optional; lookups and lists go straight to the database without it
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
		}
	}
	cacheManager := cache.NewCacheManager(redisClient, cfg.CacheTTL)

	casdoorClient := casdoor.NewClient(cfg.Casdoor)
	userRepo := casdoor.NewUserCasdoor(casdoorClient, cacheManager)

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:    db,
		Cache: cacheManager,
		User:  userRepo,
		Blob:  casdoor.NewBlobCasdoor(casdoorClient, cfg.Casdoor.ResourceOwner, "admission"),
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	var publisher events.EventPublisher
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
		logger.Info("Publishing events to Kafka", "brokers", cfg.Events.KafkaBrokers, "topic", cfg.Events.Topic)
	} else {
		inProcess, pubSub := events.NewInProcessPublisher(cfg.Events.Topic, slogLogger)
		if err := events.LogEvents(context.Background(), pubSub, cfg.Events.Topic, slogLogger); err != nil {
			log.Fatalf("Failed to subscribe to in-process events: %v", err)
		}
		publisher = inProcess
		logger.Info("Publishing events in process, logged at debug level and not delivered elsewhere", "topic", cfg.Events.Topic)
	}

	serviceManager := services.NewServiceManager(db, repoManager.GetRepository(), slogLogger, validator.New(), publisher,
		services.ServiceManagerConfig{
			UploadMaxBytes:         cfg.UploadMaxBytes,
			AdminForceResetEnabled: cfg.AdminForceResetEnabled,
		})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, logger, casdoorClient, userRepo, cfg.UploadMaxBytes)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.UploadMaxBytes)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Closes the event publisher, the database pool and the Redis client
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	logger.Info("Server exited")
}
