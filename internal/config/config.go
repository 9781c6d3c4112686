package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Service configuration
	ServiceName string
	Environment string
	LogFilePath string

	// NATS configuration
	NatsURL          string
	NatsChatSubject  string
	NatsClearSubject string
	NatsTimeout      time.Duration

	// Gemini configuration
	GeminiAPIKey   string
	GeminiModel    string
	LLMTimeout     time.Duration
	LLMTemperature float64

	// Offer documents
	OffersDir string

	// Session store configuration
	SessionStore string // "memory" or "redis"
	RedisURL     string
	SessionTTL   time.Duration
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

func Load() *Config {
	return &Config{
		// Service settings
		ServiceName: getEnv("SERVICE_NAME", "travelbuddy-intent"),
		Environment: getEnv("GO_ENV", "development"),
		LogFilePath: getEnv("LOG_FILE_PATH", "travelbuddy.log"),

		// NATS settings
		NatsURL:          getEnv("NATS_URL", "nats://localhost:4222"),
		NatsChatSubject:  getEnv("NATS_CHAT_SUBJECT", "travel.chat"),
		NatsClearSubject: getEnv("NATS_CLEAR_SUBJECT", "travel.session.clear"),
		NatsTimeout:      getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		// Gemini settings
		GeminiAPIKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		LLMTimeout:     getDurationEnv("LLM_TIMEOUT", 30*time.Second),
		LLMTemperature: getFloatEnv("LLM_TEMPERATURE", 0.4),

		OffersDir: getEnv("OFFERS_DIR", "./offers"),

		// Session settings
		SessionStore: getEnv("SESSION_STORE", SessionStoreMemory),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:   getDurationEnv("SESSION_TTL", 0),
	}
}

// IsProduction reports whether the service runs with GO_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LLMEnabled reports whether a Gemini key is configured.
func (c *Config) LLMEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
