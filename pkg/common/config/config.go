package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort      string
	ServerHost      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxRequestBody  int64
	RateLimitRPS    int
	RateLimitBurst  int

	// Database
	DatabaseDriver   string // postgres or sqlite
	SQLitePath       string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers      []string
	KafkaGroupID      string
	KafkaRecordsTopic string
	KafkaScoresTopic  string
	KafkaEnabled      bool

	// Scoring
	CatalogPath   string
	RecordPrefix  string
	RecordTTL     time.Duration
	BatchWorkers  int
	MaxBatchSize  int
	PersistScores bool
}

func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8090"),
		ServerHost:      getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxRequestBody:  int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),
		RateLimitRPS:    getIntEnv("RATE_LIMIT_RPS", 0),
		RateLimitBurst:  getIntEnv("RATE_LIMIT_BURST", 0),

		DatabaseDriver:   strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		SQLitePath:       getEnv("SQLITE_PATH", "cvdrisk.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "cvdrisk"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "cvdrisk"),
		PostgresDB:       getEnv("POSTGRES_DB", "cvdrisk"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:      getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "cvdrisk-scoring"),
		KafkaRecordsTopic: getEnv("KAFKA_RECORDS_TOPIC", "clinical-records"),
		KafkaScoresTopic:  getEnv("KAFKA_SCORES_TOPIC", "risk-scores"),
		KafkaEnabled:      getBoolEnv("KAFKA_ENABLED", true),

		CatalogPath:   getEnv("MODEL_CATALOG_PATH", ""),
		RecordPrefix:  getEnv("RECORD_KEY_PREFIX", "cvdrisk:record:"),
		RecordTTL:     getDuration("RECORD_TTL", 24*time.Hour),
		BatchWorkers:  getIntEnv("BATCH_WORKERS", 8),
		MaxBatchSize:  getIntEnv("MAX_BATCH_SIZE", 1000),
		PersistScores: getBoolEnv("PERSIST_SCORES", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getStringSliceEnv splits a comma separated value, dropping empty entries.
func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
