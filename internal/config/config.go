package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	FavouritesStorePostgres = "postgres"
	FavouritesStoreMongo    = "mongo"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL    string
	MigrateOnStart bool

	JWTSecret            string
	TokenTTL             time.Duration
	SessionPruneInterval time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SessionCacheTTL time.Duration

	FavouritesStore string
	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		FavouritesStore: strings.ToLower(getEnvWithDefault("FAVORITES_STORE", FavouritesStorePostgres)),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase: getEnvWithDefault("MONGODB_DATABASE", "connect"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		AllowedOrigins: splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	var err error
	if cfg.MigrateOnStart, err = getEnvBool("MIGRATE_ON_START", true); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionPruneInterval, err = getEnvDuration("SESSION_PRUNE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionCacheTTL, err = getEnvDuration("SESSION_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	switch c.FavouritesStore {
	case FavouritesStorePostgres:
	case FavouritesStoreMongo:
		if c.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI is required when FAVORITES_STORE=mongo")
		}
	default:
		return fmt.Errorf("FAVORITES_STORE must be %q or %q, got %q", FavouritesStorePostgres, FavouritesStoreMongo, c.FavouritesStore)
	}

	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 10m or 24h: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// CloudinaryEnabled reports whether avatar uploads can be served.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
