package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	LogLevel       string
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Asterisk Manager Interface
	AMIAddr   string
	AMIUser   string
	AMISecret string

	// Queue metadata database
	PostgresURL string

	// Panel presence
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PresenceTTL   time.Duration

	// Transition events
	KafkaBrokers []string
	KafkaTopic   string

	// Aggregation loop
	AggregateInterval time.Duration
	OnlyFromStatus    bool
	OnlyWithAgents    bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AMIAddr:        getEnv("AMI_ADDR", "localhost:5038"),
		AMIUser:        getEnv("AMI_USER", "painel"),
		AMISecret:      getEnv("AMI_SECRET", ""),
		PostgresURL:    getEnv("POSTGRES_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "agent.status.changed"),
		OnlyFromStatus: getEnv("ONLY_FROM_STATUS", "false") == "true",
		OnlyWithAgents: getEnv("ONLY_WITH_AGENTS", "true") == "true",
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				config.KafkaBrokers = append(config.KafkaBrokers, b)
			}
		}
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	config.RedisDB = redisDB

	presenceTTL, err := strconv.Atoi(getEnv("PRESENCE_TTL", "90"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRESENCE_TTL: %w", err)
	}
	config.PresenceTTL = time.Duration(presenceTTL) * time.Second

	aggInterval, err := strconv.Atoi(getEnv("AGGREGATE_INTERVAL_MS", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGGREGATE_INTERVAL_MS: %w", err)
	}
	config.AggregateInterval = time.Duration(aggInterval) * time.Millisecond

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
