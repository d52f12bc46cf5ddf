package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerHost     string
	EstimatorPort  string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Model
	ModelArtifactPath string

	// Database
	PersistDatasets  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	PredictionCacheEnabled bool
	RedisHost              string
	RedisPort              string
	RedisPassword          string
	RedisDB                int
	PredictionCacheTTL     time.Duration

	// Kafka
	KafkaBrokers []string
	DatasetTopic string

	// Synthesizer
	SynthesizerURL     string
	SynthesizerTimeout time.Duration
	SynthesizerRetries int
}

func Load() *Config {
	return &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		EstimatorPort:  getEnv("ESTIMATOR_PORT", "8501"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 64*1024)),

		ModelArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "artifacts/hospital_charge_model.json"),

		PersistDatasets:  getBoolEnv("PERSIST_DATASETS", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "synaptica"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "synaptica123"),
		PostgresDB:       getEnv("POSTGRES_DB", "hospital_charges"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		PredictionCacheEnabled: getBoolEnv("PREDICTION_CACHE_ENABLED", false),
		RedisHost:              getEnv("REDIS_HOST", "localhost"),
		RedisPort:              getEnv("REDIS_PORT", "6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getIntEnv("REDIS_DB", 0),
		PredictionCacheTTL:     getDuration("PREDICTION_CACHE_TTL", 10*time.Minute),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", nil),
		DatasetTopic: getEnv("DATASET_TOPIC", "healthcare.datasets"),

		SynthesizerURL:     getEnv("SYNTHESIZER_URL", ""),
		SynthesizerTimeout: getDuration("SYNTHESIZER_TIMEOUT", 2*time.Minute),
		SynthesizerRetries: getIntEnv("SYNTHESIZER_RETRIES", 3),
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
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

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
