package datagen

import (
	"math"
	"sort"

	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

var (
	numericColumns     = []string{"age", "length_of_stay", "total_charges"}
	categoricalColumns = []string{"gender", "race", "diagnosis_code", "procedure_code", "treatment_type", "insurance_type"}
)

// NumericSummary mirrors a describe() row: sample std, linear-interpolated quartiles.
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

type CategoryCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type CategorySummary struct {
	Column string          `json:"column"`
	Counts []CategoryCount `json:"counts"`
}

type Summary struct {
	Records     int               `json:"records"`
	Columns     int               `json:"columns"`
	Numeric     []NumericSummary  `json:"numeric"`
	Categorical []CategorySummary `json:"categorical"`
}

func (s Summary) NumericColumn(name string) (NumericSummary, bool) {
	for _, n := range s.Numeric {
		if n.Column == name {
			return n, true
		}
	}
	return NumericSummary{}, false
}

func (s Summary) CategoryColumn(name string) (CategorySummary, bool) {
	for _, c := range s.Categorical {
		if c.Column == name {
			return c, true
		}
	}
	return CategorySummary{}, false
}

func Summarize(records []models.PatientRecord) Summary {
	s := Summary{Records: len(records), Columns: len(models.Columns)}
	for _, column := range numericColumns {
		values := make([]float64, len(records))
		for i, r := range records {
			values[i] = numericValue(r, column)
		}
		s.Numeric = append(s.Numeric, describe(column, values))
	}
	for _, column := range categoricalColumns {
		values := make([]string, len(records))
		for i, r := range records {
			values[i] = categoryValue(r, column)
		}
		s.Categorical = append(s.Categorical, CategorySummary{Column: column, Counts: valueCounts(values)})
	}
	return s
}

func numericValue(r models.PatientRecord, column string) float64 {
	switch column {
	case "age":
		return float64(r.Age)
	case "length_of_stay":
		return float64(r.LengthOfStay)
	default:
		return r.TotalCharges
	}
}

func categoryValue(r models.PatientRecord, column string) string {
	switch column {
	case "gender":
		return string(r.Gender)
	case "race":
		return string(r.Race)
	case "diagnosis_code":
		return string(r.DiagnosisCode)
	case "procedure_code":
		return string(r.ProcedureCode)
	case "treatment_type":
		return string(r.TreatmentType)
	default:
		return string(r.InsuranceType)
	}
}

func describe(column string, values []float64) NumericSummary {
	ns := NumericSummary{Column: column, Count: len(values)}
	if len(values) == 0 {
		return ns
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	ns.Mean = sum / float64(len(sorted))
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			sq += (v - ns.Mean) * (v - ns.Mean)
		}
		ns.Std = math.Sqrt(sq / float64(len(sorted)-1))
	}
	ns.Min = sorted[0]
	ns.Max = sorted[len(sorted)-1]
	ns.P25 = quantile(sorted, 0.25)
	ns.P50 = quantile(sorted, 0.50)
	ns.P75 = quantile(sorted, 0.75)
	return ns
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// valueCounts orders by count descending, then value ascending.
func valueCounts(values []string) []CategoryCount {
	counts := map[string]int{}
	for _, v := range values {
		counts[v]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, CategoryCount{Value: v, Count: c, Percent: 100 * float64(c) / float64(len(values))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

type ColumnComparison struct {
	Column        string  `json:"column"`
	OriginalMean  float64 `json:"original_mean"`
	OriginalStd   float64 `json:"original_std"`
	SyntheticMean float64 `json:"synthetic_mean"`
	SyntheticStd  float64 `json:"synthetic_std"`
}

type Comparison struct {
	OriginalRecords  int                `json:"original_records"`
	SyntheticRecords int                `json:"synthetic_records"`
	ScaleFactor      float64            `json:"scale_factor"`
	DroppedRows      int                `json:"dropped_rows"`
	Columns          []ColumnComparison `json:"columns"`
}

func Compare(original, synthetic Summary) Comparison {
	c := Comparison{OriginalRecords: original.Records, SyntheticRecords: synthetic.Records}
	if original.Records > 0 {
		c.ScaleFactor = float64(synthetic.Records) / float64(original.Records)
	}
	for _, column := range numericColumns {
		o, _ := original.NumericColumn(column)
		s, _ := synthetic.NumericColumn(column)
		c.Columns = append(c.Columns, ColumnComparison{
			Column:        column,
			OriginalMean:  o.Mean,
			OriginalStd:   o.Std,
			SyntheticMean: s.Mean,
			SyntheticStd:  s.Std,
		})
	}
	return c
}
