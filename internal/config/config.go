package config

import (
	"os"
	"strconv"
	"strings"
)

// Config centralizes runtime settings for the API and the build worker.
type Config struct {
	Port string

	AuthToken          string
	CORSAllowedOrigins []string

	DatabaseURL string
	StatePath   string

	GatewayAPIKey    string
	GatewayBaseURL   string
	GatewayTimeoutMS int
	GatewaySiteURL   string
	GatewayAppName   string

	ModelStructure    string
	ModelDesign       string
	ModelCode         string
	ModelContent      string
	ModelOptimization string

	ResponseCacheTTLSeconds int
	ResponseCacheMaxEntries int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisDLQ      string
	RedisGroup    string
	RedisConsumer string

	RateLimitRPS   float64
	RateLimitBurst int

	QueueBatchingEnabled     bool
	QueueBatchSize           int
	QueueBatchFlushMS        int
	QueueBatchFlushTimeoutMS int
	QueueBatchQueueCapacity  int
	QueueBatchMaxInFlight    int

	WorkerEnabled bool

	DeployDelayMS int
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		AuthToken:          getEnv("API_AUTH_TOKEN", ""),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", nil),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		StatePath:   getEnv("STATE_DB_PATH", ""),

		GatewayAPIKey:    getEnv("GATEWAY_API_KEY", ""),
		GatewayBaseURL:   getEnv("GATEWAY_BASE_URL", "https://openrouter.ai/api/v1"),
		GatewayTimeoutMS: getEnvInt("GATEWAY_TIMEOUT_MS", 45000),
		GatewaySiteURL:   getEnv("GATEWAY_SITE_URL", ""),
		GatewayAppName:   getEnv("GATEWAY_APP_NAME", "LeadForge"),

		ModelStructure:    getEnv("MODEL_STRUCTURE", ""),
		ModelDesign:       getEnv("MODEL_DESIGN", ""),
		ModelCode:         getEnv("MODEL_CODE", ""),
		ModelContent:      getEnv("MODEL_CONTENT", ""),
		ModelOptimization: getEnv("MODEL_OPTIMIZATION", ""),

		ResponseCacheTTLSeconds: getEnvInt("RESPONSE_CACHE_TTL_SECONDS", 900),
		ResponseCacheMaxEntries: getEnvInt("RESPONSE_CACHE_MAX_ENTRIES", 500),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisStream:   getEnv("REDIS_STREAM", "lf_builds"),
		RedisDLQ:      getEnv("REDIS_DLQ_STREAM", "lf_builds_dlq"),
		RedisGroup:    getEnv("REDIS_GROUP", "lf_workers"),
		RedisConsumer: getEnv("REDIS_CONSUMER", "api-1"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		QueueBatchingEnabled:     getEnvBool("QUEUE_BATCHING_ENABLED", true),
		QueueBatchSize:           getEnvInt("QUEUE_BATCH_SIZE", 32),
		QueueBatchFlushMS:        getEnvInt("QUEUE_BATCH_FLUSH_MS", 25),
		QueueBatchFlushTimeoutMS: getEnvInt("QUEUE_BATCH_FLUSH_TIMEOUT_MS", 3000),
		QueueBatchQueueCapacity:  getEnvInt("QUEUE_BATCH_QUEUE_CAPACITY", 2048),
		QueueBatchMaxInFlight:    getEnvInt("QUEUE_BATCH_MAX_IN_FLIGHT", 4),

		WorkerEnabled: getEnvBool("WORKER_ENABLED", true),

		DeployDelayMS: getEnvInt("DEPLOY_SIMULATED_DELAY_MS", 2000),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
