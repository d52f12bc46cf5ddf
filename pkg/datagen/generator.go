// Package datagen fabricates a synthetic hospital-charges dataset, writes it
// as CSV and optionally asks an external synthesizer to scale it up.
package datagen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

var ErrInvalidSampleCount = errors.New("n_samples must be a positive integer")

const (
	ageMean   = 55.0
	ageStdDev = 18.0
	stayScale = 3.0
	noiseStd  = 0.2

	baseCharge   = 5000.0
	ageReference = 40.0
	ageDivisor   = 20.0
	ageWeight    = 1000.0
	dailyRate    = 800.0
)

var (
	genderDist    = newWeighted(models.Genders, []float64{0.48, 0.52})
	raceDist      = newWeighted(models.Races, []float64{0.60, 0.13, 0.18, 0.06, 0.03})
	treatmentDist = newWeighted(models.TreatmentTypes, []float64{0.25, 0.35, 0.20, 0.15, 0.05})
	insuranceDist = newWeighted(models.InsuranceTypes, []float64{0.40, 0.35, 0.20, 0.05})
)

type weighted[T any] struct {
	values     []T
	cumulative []float64
}

func newWeighted[T any](values []T, probs []float64) weighted[T] {
	if len(values) != len(probs) {
		panic("datagen: values and probabilities differ in length")
	}
	cumulative := make([]float64, len(probs))
	var total float64
	for i, p := range probs {
		total += p
		cumulative[i] = total
	}
	return weighted[T]{values: values, cumulative: cumulative}
}

func (w weighted[T]) draw(r *rand.Rand) T {
	u := r.Float64() * w.cumulative[len(w.cumulative)-1]
	idx := sort.Search(len(w.cumulative), func(i int) bool { return w.cumulative[i] > u })
	if idx >= len(w.values) {
		idx = len(w.values) - 1
	}
	return w.values[idx]
}

func uniform[T any](r *rand.Rand, values []T) T {
	return values[r.IntN(len(values))]
}

// Generator produces PatientRecords from a fixed seed. Every call to Generate
// restarts the random stream, so equal (seed, n) pairs give equal datasets.
type Generator struct {
	seed int64
}

func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

func (g *Generator) Seed() int64 {
	return g.seed
}

func (g *Generator) Generate(n int) ([]models.PatientRecord, error) {
	records, _, err := g.draw(n)
	return records, err
}

// draw fills the dataset column by column and also returns the per-row noise.
func (g *Generator) draw(n int) ([]models.PatientRecord, []float64, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, n)
	}
	r := rand.New(rand.NewPCG(uint64(g.seed), uint64(g.seed)))
	bounds := models.GeneratorBounds
	records := make([]models.PatientRecord, n)

	for i := range records {
		age := ageMean + ageStdDev*r.NormFloat64()
		records[i].Age = int(clamp(age, float64(bounds.AgeMin), float64(bounds.AgeMax)))
	}
	for i := range records {
		records[i].Gender = genderDist.draw(r)
	}
	for i := range records {
		records[i].Race = raceDist.draw(r)
	}
	for i := range records {
		stay := stayScale * r.ExpFloat64()
		records[i].LengthOfStay = int(clamp(stay, float64(bounds.StayMin), float64(bounds.StayMax)))
	}
	for i := range records {
		records[i].TreatmentType = treatmentDist.draw(r)
	}
	for i := range records {
		records[i].InsuranceType = insuranceDist.draw(r)
	}
	for i := range records {
		records[i].DiagnosisCode = uniform(r, models.DiagnosisCodes)
	}
	for i := range records {
		records[i].ProcedureCode = uniform(r, models.ProcedureCodes)
	}

	noise := make([]float64, n)
	for i := range noise {
		noise[i] = noiseStd * r.NormFloat64()
	}
	for i := range records {
		records[i].TotalCharges = ChargeFor(records[i].PatientFeatures, noise[i])
	}
	return records, noise, nil
}

// ChargeFor derives total_charges for one row given its multiplicative noise:
// (base + age term + stay term) x treatment x insurance x (1+noise), clamped
// to [1000, 50000] and rounded to cents.
func ChargeFor(f models.PatientFeatures, noise float64) float64 {
	ageFactor := (float64(f.Age) - ageReference) / ageDivisor
	stayFactor := float64(f.LengthOfStay) * dailyRate
	charge := (baseCharge + ageFactor*ageWeight + stayFactor) *
		f.TreatmentType.Factor() *
		f.InsuranceType.Factor() *
		(1 + noise)
	return roundCents(clamp(charge, models.MinTotalCharges, models.MaxTotalCharges))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func roundCents(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
