package serving

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

// Cache stores raw predictions keyed by model version and features.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, value float64) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	value, err := c.client.Get(ctx, key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value float64) error {
	return c.client.Set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64), c.ttl).Err()
}

// CacheKey is stable for identical features under the same model version.
func CacheKey(modelVersion string, f models.PatientFeatures) string {
	parts := []string{
		strconv.Itoa(f.Age),
		string(f.Gender),
		string(f.Race),
		string(f.DiagnosisCode),
		string(f.ProcedureCode),
		strconv.Itoa(f.LengthOfStay),
		string(f.TreatmentType),
		string(f.InsuranceType),
	}
	return "estimate:" + modelVersion + ":" + strings.Join(parts, "|")
}
