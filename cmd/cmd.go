package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doggydate-backend/internal/config"
	"doggydate-backend/internal/handlers"
	"doggydate-backend/internal/middleware"
	"doggydate-backend/internal/pubsub"
	"doggydate-backend/internal/repository"
	"doggydate-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	// Connect to database
	db, err := repository.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Database schema is up to date")
	}

	// Room fan-out
	var broker pubsub.Broker = pubsub.NewLocalBroker()
	if cfg.Redis.Enabled {
		broker, err = pubsub.NewRedisBroker(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("Redis room fan-out enabled")
	}
	defer broker.Close()

	hub, err := services.NewHub(ctx, broker)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start real-time hub")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	petRepo := repository.NewPetRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// Push notifications
	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.APNS.Enabled {
		notifier, err = services.NewAPNSNotifier(
			userRepo,
			cfg.APNS.KeyFile,
			cfg.APNS.KeyID,
			cfg.APNS.TeamID,
			cfg.APNS.Topic,
			cfg.APNS.Production,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs notifier")
		}
		log.Info().Bool("production", cfg.APNS.Production).Msg("Push notifications enabled")
	}

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	petService := services.NewPetService(petRepo)
	matchService := services.NewMatchService(matchRepo, notifier, cfg.Match.PageSize)
	chatService := services.NewChatService(chatRepo, hub, notifier)

	var mediaService *services.MediaService
	if cfg.AWS.Enabled() {
		mediaService, err = services.NewMediaService(ctx, petRepo, services.S3Options{
			Region:        cfg.AWS.Region,
			Bucket:        cfg.AWS.S3Bucket,
			AccessKey:     cfg.AWS.AccessKey,
			SecretKey:     cfg.AWS.SecretKey,
			Endpoint:      cfg.AWS.Endpoint,
			PublicBaseURL: cfg.AWS.PublicBaseURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create media service")
		}
	} else {
		log.Warn().Msg("S3 bucket not configured, pet image uploads disabled")
	}

	// Setup router
	router := handlers.NewRouter(handlers.Routes{
		Users:          handlers.NewUserHandler(userService, petService),
		Pets:           handlers.NewPetHandler(petService, mediaService),
		Matches:        handlers.NewMatchHandler(matchService),
		Chats:          handlers.NewChatHandler(chatService),
		WebSocket:      handlers.NewWebSocketHandler(hub, userService, chatService, cfg.Server.AllowedOrigins),
		Health:         handlers.NewHealthHandler(db),
		Auth:           middleware.AuthMiddleware(userService),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log.Logger,
	})

	// Create HTTP server. WriteTimeout stays unset for WebSocket connections.
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown
	hub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
