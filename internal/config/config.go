package config

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Dataset configuration
	Dataset DatasetConfig

	// Price predictor configuration
	Predictor PredictorConfig

	// Authentication configuration
	Auth AuthConfig

	// Server configuration
	Server ServerConfig

	// Chat configuration
	Chat ChatConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatasetConfig controls where the car dataset is loaded from
type DatasetConfig struct {
	// Source is "csv" or "postgres"
	Source  string
	CSVPath string
}

// PredictorConfig holds price prediction model-server configuration
type PredictorConfig struct {
	Endpoint string
	Timeout  time.Duration
	Enabled  bool
}

// AuthConfig holds authentication and authorization configuration
type AuthConfig struct {
	JWTSecret      string
	JWTExpiry      time.Duration
	SessionExpiry  time.Duration
	RateLimit      int
	DailyQuota     int
	AllowAnonymous bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port    string
	GinMode string
}

// ChatConfig holds chat engine configuration
type ChatConfig struct {
	Timeout        time.Duration
	CacheTTL       time.Duration
	MaxQueryLength int
	HistorySize    int
	RandomSeed     int64
}

// Loader handles loading configuration from various sources
type Loader struct {
	provider SecretProvider
}

// NewLoader creates a new configuration loader with the given secret provider
func NewLoader(provider SecretProvider) *Loader {
	return &Loader{
		provider: provider,
	}
}

// NewDefaultLoader creates a loader with the default provider chain:
// 1. Kubernetes secrets (if available)
// 2. File-based secrets (if available)
// 3. Environment variables (fallback)
func NewDefaultLoader() *Loader {
	providers := []SecretProvider{
		NewK8sProvider("", ""),          // Auto-detect K8s environment
		NewFileProvider("/var/secrets"), // Common secret mount path
		NewEnvProvider(),                // Always available fallback
	}

	return &Loader{
		provider: NewChainProvider(providers...),
	}
}

// Load loads the complete configuration
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}

	// Load Database config
	cfg.Database = DatabaseConfig{
		Host:     l.getString(ctx, "DB_HOST", "localhost"),
		Port:     l.getString(ctx, "DB_PORT", "5432"),
		Database: l.getString(ctx, "DB_NAME", "ev_chatbot"),
		Username: l.getString(ctx, "DB_USER", "ev_chatbot"),
		Password: l.getString(ctx, "DB_PASSWORD", ""),
		SSLMode:  l.getString(ctx, "DB_SSLMODE", "disable"),
	}

	// Load Redis config
	cfg.Redis = RedisConfig{
		Addr:     l.getString(ctx, "REDIS_ADDR", "localhost:6379"),
		Password: l.getString(ctx, "REDIS_PASSWORD", ""),
		DB:       l.getInt(ctx, "REDIS_DB", 0),
	}

	// Load Dataset config
	cfg.Dataset = DatasetConfig{
		Source:  l.getString(ctx, "DATASET_SOURCE", "csv"),
		CSVPath: l.getString(ctx, "DATASET_CSV_PATH", "data/cars.csv"),
	}

	// Load Predictor config
	cfg.Predictor = PredictorConfig{
		Endpoint: l.getString(ctx, "PREDICTOR_ENDPOINT", "http://localhost:8501"),
		Timeout:  l.getDuration(ctx, "PREDICTOR_TIMEOUT", 10*time.Second),
		Enabled:  l.getBool(ctx, "PREDICTOR_ENABLED", true),
	}

	// Load Auth config
	cfg.Auth = AuthConfig{
		JWTSecret:      l.getString(ctx, "JWT_SECRET", ""),
		JWTExpiry:      l.getDuration(ctx, "JWT_EXPIRY", 24*time.Hour),
		SessionExpiry:  l.getDuration(ctx, "SESSION_EXPIRY", 7*24*time.Hour),
		RateLimit:      l.getInt(ctx, "RATE_LIMIT", 100),
		DailyQuota:     l.getInt(ctx, "DAILY_QUERY_QUOTA", 1000),
		AllowAnonymous: l.getBool(ctx, "ALLOW_ANONYMOUS", true),
	}

	// Load Server config
	cfg.Server = ServerConfig{
		Port:    l.getString(ctx, "PORT", "8080"),
		GinMode: l.getString(ctx, "GIN_MODE", "debug"),
	}

	// Load Chat config
	cfg.Chat = ChatConfig{
		Timeout:        l.getDuration(ctx, "CHAT_TIMEOUT", 10*time.Second),
		CacheTTL:       l.getDuration(ctx, "CACHE_TTL", 5*time.Minute),
		MaxQueryLength: l.getInt(ctx, "MAX_QUERY_LENGTH", 500),
		HistorySize:    l.getInt(ctx, "CHAT_HISTORY_SIZE", 20),
		RandomSeed:     int64(l.getInt(ctx, "CHAT_RANDOM_SEED", 0)),
	}

	return cfg, nil
}

// Helper methods for retrieving and parsing configuration values

func (l *Loader) getString(ctx context.Context, key, defaultValue string) string {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value
}

func (l *Loader) getBool(ctx context.Context, key string, defaultValue bool) bool {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func (l *Loader) getInt(ctx context.Context, key string, defaultValue int) int {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func (l *Loader) getDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// MustLoad loads configuration and panics on error
// Useful for application startup
func (l *Loader) MustLoad(ctx context.Context) *Config {
	cfg, err := l.Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
