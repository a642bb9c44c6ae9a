package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/glossary-be/internal/api"
	"github.com/isdelr/glossary-be/internal/auth"
	"github.com/isdelr/glossary-be/internal/config"
	"github.com/isdelr/glossary-be/internal/database"
	"github.com/isdelr/glossary-be/internal/logger"
	"github.com/isdelr/glossary-be/internal/middleware"
	"github.com/isdelr/glossary-be/internal/monitoring"
	"github.com/isdelr/glossary-be/internal/services"
	"github.com/isdelr/glossary-be/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	startedAt := time.Now()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Fatal().Str("key", cfgErr.Key).Msg(cfgErr.Error())
		}
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	tokens, err := auth.NewTokenService(tokenSecret(cfg), cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}
	gate := auth.NewGate(cfg.AuthMode, tokens)

	// Set up services
	eventService := services.NewEventService(db)
	contributorService := services.NewContributorService(db)
	termService := services.NewTermService(db, hub, eventService)
	resourceService := services.NewResourceService(db, hub, eventService)
	hasher := auth.NewHasher(cfg.BcryptCost)
	authService, err := services.NewAuthService(contributorService, hasher, tokens, eventService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth service")
	}
	log.Info().Int("bcrypt_cost", hasher.Cost()).Dur("token_ttl", tokens.TTL()).Msg("Auth configured")

	if cfg.HasSeedContributor() {
		seedContributor(authService, cfg)
	}

	limiter, redisClient := loginLimiter(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(cfg.StatsInterval)
	go statUpdater.Run()

	// Set up and run the background scheduler
	scheduler, err := monitoring.NewScheduler(eventService, cfg.EventPruneSchedule, cfg.EventRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	scheduler.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Gate:            gate,
		Hub:             hub,
		Auth:            authService,
		Contributors:    contributorService,
		Terms:           termService,
		Resources:       resourceService,
		Events:          eventService,
		Stats:           statUpdater,
		LoginLimiter:    limiter,
		LoginRetryAfter: cfg.LoginRateWindow,
		AllowedOrigins:  cfg.AllowedOrigins,
		TrustedProxies:  cfg.TrustedProxies,
		StartedAt:       startedAt,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("auth_mode", string(gate.Mode())).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop() // Stop the monitoring service
	scheduler.Stop()   // Stop the scheduler

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

// tokenSecret returns the configured signing secret. With authentication
// disabled and no secret configured, logins still get tokens signed with a
// random per-process key.
func tokenSecret(cfg *config.Config) []byte {
	if cfg.TokenSecret != "" {
		return []byte(cfg.TokenSecret)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate ephemeral token secret")
	}
	log.Warn().Msg("TOKEN_SECRET is not set; tokens are signed with an ephemeral key and will not survive a restart")
	return secret
}

func seedContributor(authService *services.AuthService, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, created, err := authService.EnsureContributor(ctx, services.RegisterInput{
		Name:     cfg.SeedName,
		Email:    cfg.SeedEmail,
		Region:   cfg.SeedRegion,
		Password: cfg.SeedPassword,
	})
	if err != nil {
		log.Fatal().Err(err).Str("email", cfg.SeedEmail).Msg("Failed to seed contributor")
	}
	if created {
		log.Info().Int64("contributor_id", id).Str("email", cfg.SeedEmail).Msg("Seeded initial contributor")
	}
}

// loginLimiter prefers a Redis-backed limiter shared across replicas and
// falls back to an in-process one. A non-positive limit disables throttling.
func loginLimiter(cfg *config.Config) (middleware.Limiter, *redis.Client) {
	if cfg.LoginRateLimit <= 0 {
		log.Warn().Msg("Login rate limiting is disabled")
		return nil, nil
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedis(context.Background(), cfg.RedisURL)
		if err == nil {
			log.Info().Msg("Login rate limiting backed by Redis")
			return middleware.NewRedisLimiter(client, cfg.LoginRateLimit, cfg.LoginRateWindow), client
		}
		log.Warn().Err(err).Msg("Redis unavailable, using in-process login rate limiting")
	}
	return middleware.NewMemoryLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow), nil
}
