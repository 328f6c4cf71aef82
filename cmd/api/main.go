package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/joshua-takyi/connect/internal/config"
	"github.com/joshua-takyi/connect/internal/connect"
	"github.com/joshua-takyi/connect/internal/container"
	"github.com/joshua-takyi/connect/internal/helpers"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/routes"
	"github.com/joshua-takyi/connect/internal/services"
)

func main() {
	// Load environment variables; .env.local wins over .env
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting Connect API server", "environment", cfg.Environment)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := connect.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	pool, err := connect.NewPostgresPool(rootCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Connected to PostgreSQL successfully")

	stores := container.PostgresStores(models.PostgresNewRepo(pool))

	rdb, err := connect.RedisConnect(rootCtx, cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		stores.SessionCache = models.NewRedisSessionCache(rdb, cfg.SessionCacheTTL)
		logger.Info("Connected to Redis successfully, session cache enabled")
	} else {
		logger.Warn("REDIS_ADDR not set, session cache disabled")
	}

	if cfg.FavouritesStore == config.FavouritesStoreMongo {
		mongoClient, err := connect.MongoDBConnect(rootCtx, cfg)
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := connect.MongoDBDisconnect(mongoClient); err != nil {
				logger.Error("Error disconnecting from MongoDB", "error", err)
			}
		}()
		mongoRepo := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase)
		if err := mongoRepo.EnsureFavouriteIndexes(rootCtx); err != nil {
			logger.Error("Failed to create MongoDB indexes", "error", err)
			os.Exit(1)
		}
		stores.Favourites = mongoRepo
		logger.Info("Connected to MongoDB successfully, favourites stored in MongoDB")
	}

	var uploader services.AvatarUploader
	if cfg.CloudinaryEnabled() {
		cld, err := connect.CloudinaryCredentials(cfg)
		if err != nil {
			logger.Error("Failed to connect to Cloudinary", "error", err)
			os.Exit(1)
		}
		uploader = helpers.NewCloudinaryUploader(cld)
		logger.Info("Cloudinary configured, avatar uploads enabled")
	} else {
		logger.Warn("Cloudinary credentials not set, avatar uploads disabled")
	}

	tokens := helpers.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	appContainer := container.NewContainer(logger, cfg.AllowedOrigins, stores, tokens, uploader)

	prunerDone := appContainer.UserService.StartSessionPruner(rootCtx, cfg.SessionPruneInterval)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	<-prunerDone

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
