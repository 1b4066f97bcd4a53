package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	DefaultTotalTime float64
	DefaultFPS       int
	MaxFrames        int
	MaxMassRatio     float64
	SoundMaxSeconds  float64

	// Caching and limits
	CacheTTLSeconds          int
	SimulateRateLimitSeconds int

	// Workers
	ResultRetentionDays   int
	RetentionPollMinutes  int
	ExperimentWarmMinutes int

	// Security
	JWTSecret         string
	SessionTimeoutMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/blockpi?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Simulation
		DefaultTotalTime: getEnvFloat("SIM_DEFAULT_TOTAL_TIME", 10),
		DefaultFPS:       getEnvInt("SIM_DEFAULT_FPS", 30),
		MaxFrames:        getEnvInt("SIM_MAX_FRAMES", 30),
		MaxMassRatio:     getEnvFloat("SIM_MAX_MASS_RATIO", 1e8),
		SoundMaxSeconds:  getEnvFloat("SIM_SOUND_MAX_SECONDS", 5),

		// Caching and limits
		CacheTTLSeconds:          getEnvInt("CACHE_TTL_SECONDS", 3600),
		SimulateRateLimitSeconds: getEnvInt("SIMULATE_RATE_LIMIT_SECONDS", 1),

		// Workers
		ResultRetentionDays:   getEnvInt("RESULT_RETENTION_DAYS", 30),
		RetentionPollMinutes:  getEnvInt("RETENTION_POLL_MINUTES", 60),
		ExperimentWarmMinutes: getEnvInt("EXPERIMENT_WARM_MINUTES", 30),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
