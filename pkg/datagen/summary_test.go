package datagen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

func recordsWithAges(ages ...int) []models.PatientRecord {
	out := make([]models.PatientRecord, len(ages))
	for i, age := range ages {
		r := sampleRecord()
		r.Age = age
		r.TotalCharges = float64(1000 * (i + 1))
		if i%2 == 1 {
			r.Gender = models.GenderMale
		}
		out[i] = r
	}
	return out
}

func TestSummarizeNumeric(t *testing.T) {
	s := Summarize(recordsWithAges(20, 30, 40, 50))
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 9, s.Columns)

	age, ok := s.NumericColumn("age")
	require.True(t, ok)
	assert.Equal(t, 4, age.Count)
	assert.InDelta(t, 35, age.Mean, 1e-9)
	assert.InDelta(t, 12.9099, age.Std, 1e-4)
	assert.Equal(t, 20.0, age.Min)
	assert.InDelta(t, 27.5, age.P25, 1e-9)
	assert.InDelta(t, 35, age.P50, 1e-9)
	assert.InDelta(t, 42.5, age.P75, 1e-9)
	assert.Equal(t, 50.0, age.Max)

	charges, ok := s.NumericColumn("total_charges")
	require.True(t, ok)
	assert.InDelta(t, 2500, charges.Mean, 1e-9)
}

func TestSummarizeSingleRowHasZeroStd(t *testing.T) {
	s := Summarize(recordsWithAges(44))
	age, _ := s.NumericColumn("age")
	assert.Equal(t, 0.0, age.Std)
	assert.Equal(t, 44.0, age.P75)
}

func TestSummarizeCategoriesOrderedByCount(t *testing.T) {
	records := recordsWithAges(20, 30, 40)
	s := Summarize(records)

	gender, ok := s.CategoryColumn("gender")
	require.True(t, ok)
	require.Len(t, gender.Counts, 2)
	assert.Equal(t, CategoryCount{Value: "Female", Count: 2, Percent: 200.0 / 3}, gender.Counts[0])
	assert.Equal(t, "Male", gender.Counts[1].Value)

	_, ok = s.CategoryColumn("blood_type")
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	original := Summarize(recordsWithAges(20, 30))
	synthetic := Summarize(recordsWithAges(20, 30, 40, 50))

	c := Compare(original, synthetic)
	assert.Equal(t, 2, c.OriginalRecords)
	assert.Equal(t, 4, c.SyntheticRecords)
	assert.Equal(t, 2.0, c.ScaleFactor)
	require.Len(t, c.Columns, 3)
	assert.Equal(t, "age", c.Columns[0].Column)
	assert.InDelta(t, 25, c.Columns[0].OriginalMean, 1e-9)
	assert.InDelta(t, 35, c.Columns[0].SyntheticMean, 1e-9)
}

func TestWriteReports(t *testing.T) {
	original := Summarize(recordsWithAges(20, 30))
	synthetic := Summarize(recordsWithAges(20, 30, 40, 50))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, "Original Data", original))
	out := buf.String()
	assert.Contains(t, out, "ORIGINAL DATA SUMMARY")
	assert.Contains(t, out, "Total records: 2")
	assert.Contains(t, out, "GENDER:")
	assert.Contains(t, out, "Female: 1 (50.0%)")

	buf.Reset()
	require.NoError(t, WriteComparison(&buf, Compare(original, synthetic), synthetic))
	out = buf.String()
	assert.Contains(t, out, "DATA QUALITY CHECK")
	assert.Contains(t, out, "Rows dropped by schema check: 0")
	assert.Contains(t, out, "Scale factor: 2.0x")
	assert.Contains(t, out, "Original  - Mean: 25.00")
	assert.Contains(t, out, "age: 20.00 - 50.00")
}

func TestWriteComparisonReportsDroppedRows(t *testing.T) {
	original := Summarize(recordsWithAges(20, 30))
	synthetic := Summarize(recordsWithAges(20, 30, 40))
	c := Compare(original, synthetic)
	c.DroppedRows = 3

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, c, synthetic))
	assert.Contains(t, buf.String(), "Rows dropped by schema check: 3\n")
}
