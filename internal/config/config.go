package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Game      GameConfig
	Sync      SyncConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Env  string
	Addr string
	Name string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	SpinLimit    int
	GeneralLimit int
}

// GameConfig holds game-specific settings
type GameConfig struct {
	MinBet              float64
	MaxBet              float64
	BetStep             float64
	DefaultBalance      float64
	TargetRTP           float64
	MaxWinMultiplier    int
	RandomMultiplierPct float64
	GoldVariantsEnabled bool
	WildVariantsEnabled bool
}

// SyncConfig holds cascade synchronization protocol tunables. Only
// MaxRetries is read (by the synchronizer); the cascadesync transport uses
// its own DefaultAckTimeout and DefaultHeartbeatInterval constants and does
// not read AckTimeout, HeartbeatInterval or IdleTimeout.
type SyncConfig struct {
	// AckTimeout is how long the server waits for a client cascade
	// acknowledgment before treating the step as missed.
	AckTimeout time.Duration
	// MaxRetries is how many times a broadcast step is resent before the
	// synchronizer transitions the session to recovering.
	MaxRetries int
	// HeartbeatInterval is how often the server pings an idle sync session.
	HeartbeatInterval time.Duration
	// IdleTimeout closes a sync session that has sent no heartbeat response
	// for this long.
	IdleTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Addr: getEnv("APP_ADDR", ":8080"),
			Name: getEnv("APP_NAME", "InfinityStorm"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "infinitystorm"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-this-secret-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization"),
		},
		RateLimit: RateLimitConfig{
			SpinLimit:    getEnvAsInt("RATE_LIMIT_SPIN", 10),
			GeneralLimit: getEnvAsInt("RATE_LIMIT_GENERAL", 100),
		},
		Game: GameConfig{
			MinBet:              getEnvAsFloat("MIN_BET", 0.40),
			MaxBet:              getEnvAsFloat("MAX_BET", 1000.00),
			BetStep:             getEnvAsFloat("BET_STEP", 0.20),
			DefaultBalance:      getEnvAsFloat("DEFAULT_BALANCE", 1000.00),
			TargetRTP:           getEnvAsFloat("TARGET_RTP", 96.5),
			MaxWinMultiplier:    getEnvAsInt("MAX_WIN_MULTIPLIER", 25000),
			RandomMultiplierPct: getEnvAsFloat("RANDOM_MULTIPLIER_CHANCE", 0.12),
			GoldVariantsEnabled: getEnvAsBool("GOLD_VARIANTS_ENABLED", false),
			WildVariantsEnabled: getEnvAsBool("WILD_VARIANTS_ENABLED", false),
		},
		Sync: SyncConfig{
			AckTimeout:        getEnvAsDuration("SYNC_ACK_TIMEOUT", 5*time.Second),
			MaxRetries:        getEnvAsInt("SYNC_MAX_RETRIES", 3),
			HeartbeatInterval: getEnvAsDuration("SYNC_HEARTBEAT_INTERVAL", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("SYNC_IDLE_TIMEOUT", 60*time.Second),
		},
	}

	if cfg.JWT.Secret == "change-this-secret-in-production" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	if cfg.Database.Password == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("DB_PASSWORD must be set in production")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
