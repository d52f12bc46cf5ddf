package predictor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
	"github.com/synaptica-ai/hospital-charges/pkg/ml/linear"
)

const (
	ModelType       = "regression"
	ModelAlgorithm  = "linear"
	ModelTarget     = "total_charges"
	indicatorSymbol = "="
)

var ErrLoad = errors.New("predictor artifact unusable")

// LoadError means the artifact is missing, corrupt or built for another schema.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load predictor %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

// Predictor scores a single patient row.
type Predictor interface {
	Predict(ctx context.Context, features models.PatientFeatures) (float64, error)
	Version() string
}

type Artifact struct {
	Model struct {
		Type         string         `json:"type"`
		Algorithm    string         `json:"algorithm"`
		Target       string         `json:"target"`
		FeatureNames []string       `json:"feature_names"`
		Weights      linear.Weights `json:"weights"`
	} `json:"model"`
}

// Linear is an immutable linear-regression predictor over numeric columns
// and one-hot `column=value` indicators.
type Linear struct {
	artifact Artifact
	encoders []encoder
	version  string
}

type encoder func(models.PatientFeatures) float64

// Load reads and checks the artifact at path.
func Load(path string) (*Linear, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	p, err := Parse(content)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	logger.Log.WithFields(map[string]interface{}{
		"path":     path,
		"features": len(p.artifact.Model.FeatureNames),
		"version":  p.version,
	}).Info("Predictor artifact loaded")
	return p, nil
}

func Parse(content []byte) (*Linear, error) {
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	m := artifact.Model
	if m.Type != ModelType {
		return nil, fmt.Errorf("unsupported model type %q", m.Type)
	}
	if m.Algorithm != ModelAlgorithm {
		return nil, fmt.Errorf("unsupported algorithm %q", m.Algorithm)
	}
	if m.Target != ModelTarget {
		return nil, fmt.Errorf("artifact predicts %q, want %q", m.Target, ModelTarget)
	}
	if err := m.Weights.Check(len(m.FeatureNames)); err != nil {
		return nil, fmt.Errorf("artifact weights: %w", err)
	}

	encoders := make([]encoder, 0, len(m.FeatureNames))
	for _, name := range m.FeatureNames {
		enc, err := compileFeature(name)
		if err != nil {
			return nil, err
		}
		encoders = append(encoders, enc)
	}

	sum := sha256.Sum256(content)
	return &Linear{
		artifact: artifact,
		encoders: encoders,
		version:  hex.EncodeToString(sum[:6]),
	}, nil
}

func (p *Linear) Predict(ctx context.Context, features models.PatientFeatures) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	sample := make([]float64, len(p.encoders))
	for idx, enc := range p.encoders {
		sample[idx] = enc(features)
	}
	score := linear.Predict(p.artifact.Model.Weights, sample)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("non-finite prediction")
	}
	return math.Max(score, 0), nil
}

func (p *Linear) Version() string {
	return p.version
}

func (p *Linear) FeatureNames() []string {
	return append([]string(nil), p.artifact.Model.FeatureNames...)
}

type categorical struct {
	get   func(models.PatientFeatures) string
	valid func(string) bool
}

var categoricals = map[string]categorical{
	"gender": {
		get:   func(f models.PatientFeatures) string { return string(f.Gender) },
		valid: func(v string) bool { return models.Gender(v).Valid() },
	},
	"race": {
		get:   func(f models.PatientFeatures) string { return string(f.Race) },
		valid: func(v string) bool { return models.Race(v).Valid() },
	},
	"diagnosis_code": {
		get:   func(f models.PatientFeatures) string { return string(f.DiagnosisCode) },
		valid: func(v string) bool { return models.DiagnosisCode(v).Valid() },
	},
	"procedure_code": {
		get:   func(f models.PatientFeatures) string { return string(f.ProcedureCode) },
		valid: func(v string) bool { return models.ProcedureCode(v).Valid() },
	},
	"treatment_type": {
		get:   func(f models.PatientFeatures) string { return string(f.TreatmentType) },
		valid: func(v string) bool { return models.TreatmentType(v).Valid() },
	},
	"insurance_type": {
		get:   func(f models.PatientFeatures) string { return string(f.InsuranceType) },
		valid: func(v string) bool { return models.InsuranceType(v).Valid() },
	},
}

func compileFeature(name string) (encoder, error) {
	switch name {
	case "age":
		return func(f models.PatientFeatures) float64 { return float64(f.Age) }, nil
	case "length_of_stay":
		return func(f models.PatientFeatures) float64 { return float64(f.LengthOfStay) }, nil
	}

	column, value, ok := strings.Cut(name, indicatorSymbol)
	if !ok {
		return nil, fmt.Errorf("unknown feature %q", name)
	}
	cat, known := categoricals[column]
	if !known {
		return nil, fmt.Errorf("unknown column %q in feature %q", column, name)
	}
	if !cat.valid(value) {
		return nil, fmt.Errorf("unknown %s value %q", column, value)
	}
	return func(f models.PatientFeatures) float64 {
		if cat.get(f) == value {
			return 1
		}
		return 0
	}, nil
}
