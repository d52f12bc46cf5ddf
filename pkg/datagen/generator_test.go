package datagen

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

func TestGenerateRejectsNonPositiveCounts(t *testing.T) {
	for _, n := range []int{0, -5} {
		_, err := NewGenerator(42).Generate(n)
		assert.ErrorIs(t, err, ErrInvalidSampleCount)
	}
}

func TestGeneratedRowsStayInRange(t *testing.T) {
	records, err := NewGenerator(7).Generate(5000)
	require.NoError(t, err)
	require.Len(t, records, 5000)

	for i, r := range records {
		require.NoError(t, r.Validate(), "row %d", i)
		assert.GreaterOrEqual(t, r.Age, 18)
		assert.LessOrEqual(t, r.Age, 95)
		assert.GreaterOrEqual(t, r.LengthOfStay, 1)
		assert.LessOrEqual(t, r.LengthOfStay, 30)
		assert.GreaterOrEqual(t, r.TotalCharges, 1000.0)
		assert.LessOrEqual(t, r.TotalCharges, 50000.0)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	render := func(seed int64) []byte {
		records, err := NewGenerator(seed).Generate(500)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, records))
		return buf.Bytes()
	}

	first := render(42)
	assert.Equal(t, first, render(42))
	assert.NotEqual(t, first, render(43))

	g := NewGenerator(42)
	a, err := g.Generate(50)
	require.NoError(t, err)
	b, err := g.Generate(50)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChargeFormula(t *testing.T) {
	features := func(age, stay int, tt models.TreatmentType, it models.InsuranceType) models.PatientFeatures {
		return models.PatientFeatures{
			Age: age, LengthOfStay: stay, TreatmentType: tt, InsuranceType: it,
			Gender: models.GenderMale, Race: models.RaceWhite, DiagnosisCode: "I10", ProcedureCode: "0U5B7ZZ",
		}
	}
	cases := []struct {
		name     string
		features models.PatientFeatures
		noise    float64
		want     float64
	}{
		{"reference age", features(40, 1, models.TreatmentMedicalTherapy, models.InsurancePrivate), 0, 6380},
		{"surgery on medicare", features(60, 10, models.TreatmentSurgery, models.InsuranceMedicare), 0, 22680},
		{"clamped low", features(18, 1, models.TreatmentObservation, models.InsuranceUninsured), -0.9, 1000},
		{"clamped high", features(95, 30, models.TreatmentSurgery, models.InsurancePrivate), 0.5, 50000},
		{"rounded to cents", features(41, 1, models.TreatmentMedicalTherapy, models.InsuranceMedicaid), 0.0123, 4737.56},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ChargeFor(tc.features, tc.noise), 1e-9)
		})
	}
}

func TestSingleRowMatchesManualFormula(t *testing.T) {
	records, noise, err := NewGenerator(42).draw(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]

	treatment := map[models.TreatmentType]float64{
		"Surgery": 1.8, "Medical Therapy": 1.0, "Observation": 0.7, "Emergency Care": 1.5, "Rehabilitation": 1.2,
	}
	insurance := map[models.InsuranceType]float64{
		"Medicare": 0.9, "Private Insurance": 1.1, "Medicaid": 0.8, "Uninsured": 0.7,
	}
	raw := (5000 + (float64(r.Age)-40)/20*1000 + float64(r.LengthOfStay)*800) *
		treatment[r.TreatmentType] * insurance[r.InsuranceType] * (1 + noise[0])
	want := math.Round(math.Min(math.Max(raw, 1000), 50000)*100) / 100

	assert.InDelta(t, want, r.TotalCharges, 0.011)
	assert.Equal(t, ChargeFor(r.PatientFeatures, noise[0]), r.TotalCharges)

	again, err := NewGenerator(42).Generate(1)
	require.NoError(t, err)
	assert.Equal(t, r, again[0])
}

func TestCategoryFrequenciesConverge(t *testing.T) {
	const n = 100000
	records, err := NewGenerator(2024).Generate(n)
	require.NoError(t, err)

	counts := map[string]map[string]int{
		"gender": {}, "race": {}, "treatment_type": {}, "insurance_type": {}, "diagnosis_code": {},
	}
	for _, r := range records {
		counts["gender"][string(r.Gender)]++
		counts["race"][string(r.Race)]++
		counts["treatment_type"][string(r.TreatmentType)]++
		counts["insurance_type"][string(r.InsuranceType)]++
		counts["diagnosis_code"][string(r.DiagnosisCode)]++
	}

	expected := map[string]map[string]float64{
		"gender":         {"Male": 0.48, "Female": 0.52},
		"race":           {"White": 0.60, "Black": 0.13, "Hispanic": 0.18, "Asian": 0.06, "Other": 0.03},
		"treatment_type": {"Surgery": 0.25, "Medical Therapy": 0.35, "Observation": 0.20, "Emergency Care": 0.15, "Rehabilitation": 0.05},
		"insurance_type": {"Medicare": 0.40, "Private Insurance": 0.35, "Medicaid": 0.20, "Uninsured": 0.05},
	}
	for column, probs := range expected {
		for value, p := range probs {
			got := float64(counts[column][value]) / n
			assert.InDelta(t, p, got, 0.02, "%s=%s", column, value)
		}
	}
	for _, code := range models.DiagnosisCodes {
		got := float64(counts["diagnosis_code"][string(code)]) / n
		assert.InDelta(t, 1.0/15, got, 0.01, "diagnosis_code=%s", code)
	}
}

func TestAgeAndStayDistributionShape(t *testing.T) {
	records, err := NewGenerator(99).Generate(50000)
	require.NoError(t, err)
	s := Summarize(records)

	age, ok := s.NumericColumn("age")
	require.True(t, ok)
	assert.InDelta(t, 54.5, age.Mean, 1.0)

	stay, ok := s.NumericColumn("length_of_stay")
	require.True(t, ok)
	assert.Equal(t, 1.0, stay.Min)
	assert.InDelta(t, 2.81, stay.Mean, 0.15)
}
