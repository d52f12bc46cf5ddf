package serving

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
	"github.com/synaptica-ai/hospital-charges/pkg/observability/metrics"
	"github.com/synaptica-ai/hospital-charges/pkg/serving/predictor"
)

var (
	ErrNoPredictor       = errors.New("estimator requires a predictor")
	ErrNonFiniteEstimate = errors.New("predictor returned a non-finite value")
)

type Estimate struct {
	Value        float64 `json:"estimate"`
	Formatted    string  `json:"formatted"`
	Message      string  `json:"message"`
	ModelVersion string  `json:"model_version"`
	Cached       bool    `json:"cached"`
}

type Estimator struct {
	predictor predictor.Predictor
	cache     Cache
	metrics   *metrics.Metrics
	bounds    models.Bounds
}

type Option func(*Estimator)

func WithCache(cache Cache) Option {
	return func(e *Estimator) { e.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Estimator) { e.metrics = m }
}

// WithBounds overrides the accepted age and stay ranges (FormBounds by default).
func WithBounds(b models.Bounds) Option {
	return func(e *Estimator) { e.bounds = b }
}

func NewEstimator(p predictor.Predictor, opts ...Option) (*Estimator, error) {
	if p == nil {
		return nil, ErrNoPredictor
	}
	e := &Estimator{predictor: p, bounds: models.FormBounds}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Estimator) Bounds() models.Bounds {
	return e.bounds
}

func (e *Estimator) ModelVersion() string {
	return e.predictor.Version()
}

// Estimate validates features, then predicts. Invalid input never reaches the predictor.
func (e *Estimator) Estimate(ctx context.Context, features models.PatientFeatures) (Estimate, error) {
	start := time.Now()
	if err := features.Validate(e.bounds); err != nil {
		e.observe(metrics.OutcomeInvalid, start)
		return Estimate{}, err
	}

	version := e.predictor.Version()
	value, cached := e.lookup(ctx, version, features)
	if !cached {
		var err error
		value, err = e.predictor.Predict(ctx, features)
		if err != nil {
			e.observe(metrics.OutcomeError, start)
			return Estimate{}, fmt.Errorf("predict charges: %w", err)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			e.observe(metrics.OutcomeError, start)
			return Estimate{}, fmt.Errorf("predict charges: %w: %v", ErrNonFiniteEstimate, value)
		}
		if value < 0 {
			value = 0
		}
		e.store(ctx, version, features, value)
	}

	e.observe(metrics.OutcomeSuccess, start)
	rounded := Round2(value)
	return Estimate{
		Value:        rounded,
		Formatted:    FormatCurrency(rounded),
		Message:      FormatEstimate(rounded),
		ModelVersion: version,
		Cached:       cached,
	}, nil
}

func (e *Estimator) lookup(ctx context.Context, version string, features models.PatientFeatures) (float64, bool) {
	if e.cache == nil {
		return 0, false
	}
	value, ok, err := e.cache.Get(ctx, CacheKey(version, features))
	switch {
	case err != nil:
		logger.Log.WithError(err).Warn("prediction cache lookup failed")
		e.countCache(metrics.CacheUnavailable)
		return 0, false
	case ok:
		e.countCache(metrics.CacheHit)
		return value, true
	default:
		e.countCache(metrics.CacheMiss)
		return 0, false
	}
}

func (e *Estimator) store(ctx context.Context, version string, features models.PatientFeatures, value float64) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, CacheKey(version, features), value); err != nil {
		logger.Log.WithError(err).Warn("prediction cache write failed")
	}
}

func (e *Estimator) observe(outcome string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.Estimates.WithLabelValues(outcome).Inc()
	e.metrics.EstimateLatency.Observe(time.Since(start).Seconds())
}

func (e *Estimator) countCache(result string) {
	if e.metrics != nil {
		e.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
