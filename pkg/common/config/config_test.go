package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8501", cfg.EstimatorPort)
	assert.Equal(t, "artifacts/hospital_charge_model.json", cfg.ModelArtifactPath)
	assert.False(t, cfg.PredictionCacheEnabled)
	assert.False(t, cfg.PersistDatasets)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.SynthesizerURL)
	assert.Equal(t, 3, cfg.SynthesizerRetries)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ESTIMATOR_PORT", "9000")
	t.Setenv("PREDICTION_CACHE_ENABLED", "true")
	t.Setenv("PREDICTION_CACHE_TTL", "30s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("SYNTHESIZER_RETRIES", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9000", cfg.EstimatorPort)
	assert.True(t, cfg.PredictionCacheEnabled)
	assert.Equal(t, 30*time.Second, cfg.PredictionCacheTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3, cfg.SynthesizerRetries)
}
