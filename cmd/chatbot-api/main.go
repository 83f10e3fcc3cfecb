package main

import (
	"context"
	"log"
	"math/rand"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/evdataworks/ev-chatbot/internal/auth"
	"github.com/evdataworks/ev-chatbot/internal/chat"
	"github.com/evdataworks/ev-chatbot/internal/config"
	"github.com/evdataworks/ev-chatbot/internal/observability"
	"github.com/evdataworks/ev-chatbot/internal/predictor"
	"github.com/evdataworks/ev-chatbot/internal/session"
	"github.com/evdataworks/ev-chatbot/internal/store"
)

func main() {
	ctx := context.Background()
	logger := observability.NewLogger("main")

	// Load configuration
	cfg := config.NewDefaultLoader().MustLoad(ctx)
	gin.SetMode(cfg.Server.GinMode)

	// Load the car dataset once; the table is immutable for the process
	// lifetime.
	table, err := loadDataset(ctx, cfg)
	if err != nil {
		// An empty table still serves: every query gets the outage reply.
		logger.Error(ctx, "Failed to load car dataset", err, map[string]interface{}{
			"source": cfg.Dataset.Source,
		})
		table = store.NewTable(nil)
	}
	observability.RecordDatasetMetrics(table.Len(), len(table.Brands()))
	logger.Info(ctx, "Car dataset loaded", map[string]interface{}{
		"source":  cfg.Dataset.Source,
		"records": table.Len(),
		"brands":  len(table.Brands()),
	})

	// Initialize Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize the chat engine. A configured seed pins phrase selection,
	// mostly useful in staging.
	var rng *rand.Rand
	if cfg.Chat.RandomSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.Chat.RandomSeed))
	}
	engine := chat.NewEngine(table, rng)

	// Initialize the price predictor behind a circuit breaker
	var priceClient chat.PricePredictor
	if cfg.Predictor.Enabled {
		client := predictor.NewClient(cfg.Predictor.Endpoint, cfg.Predictor.Timeout)
		priceClient = predictor.NewCircuitBreakerClient(client, "price-predictor", predictor.DefaultCircuitBreakerConfig)
	}

	// Initialize chat history
	history := session.NewHistory(rdb, cfg.Chat.HistorySize, cfg.Auth.SessionExpiry)

	// Initialize auth manager
	sessionManager := session.NewManager(rdb, cfg.Auth.SessionExpiry)
	authManager := auth.NewAuthManager(auth.AuthConfig{
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTExpiry:      cfg.Auth.JWTExpiry,
		SessionExpiry:  cfg.Auth.SessionExpiry,
		RateLimit:      cfg.Auth.RateLimit,
		DailyQuota:     cfg.Auth.DailyQuota,
		AllowAnonymous: cfg.Auth.AllowAnonymous,
	}, sessionManager)

	// Start auth cleanup routine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			authManager.CleanupExpired()
		}
	}()

	// Register health checks
	healthChecker := observability.NewHealthChecker()

	healthChecker.Register("redis", observability.RedisHealthCheck(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}))

	healthChecker.Register("dataset", observability.DatasetHealthCheck(table.Len))

	if priceClient != nil {
		healthChecker.Register("predictor", observability.PredictorHealthCheck(func(ctx context.Context) error {
			return priceClient.Health(ctx)
		}))
	}

	healthChecker.Register("memory", observability.MemoryHealthCheck(func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	}))

	// Create the chat service and wire routes
	service := chat.NewService(engine, table, rdb, history, priceClient, chat.ServiceConfig{
		CacheTTL:       cfg.Chat.CacheTTL,
		MaxQueryLength: cfg.Chat.MaxQueryLength,
	})
	service.SetHealthChecker(healthChecker)

	router := service.SetupRoutes(authManager)

	// Add auth handlers for login/logout/user management
	authHandlers := auth.NewAuthHandlers(authManager)
	authHandlers.SetupRoutes(router.Group("/api/v1"))

	port := cfg.Server.Port
	logger.Info(ctx, "EV chatbot starting", map[string]interface{}{
		"port":    port,
		"version": "1.0.0",
	})
	if err := router.Run(":" + port); err != nil {
		logger.Error(ctx, "Failed to start server", err, nil)
		log.Fatal("Failed to start server:", err)
	}
}

// loadDataset loads the car table from the configured source.
func loadDataset(ctx context.Context, cfg *config.Config) (*store.Table, error) {
	if cfg.Dataset.Source == "postgres" {
		pg, err := store.NewPostgres(store.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Database,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		defer pg.Close()
		return pg.LoadTable(ctx)
	}
	return store.LoadCSV(cfg.Dataset.CSVPath)
}
