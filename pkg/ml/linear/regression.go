package linear

import "fmt"

type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

// Check reports whether the weights can score samples of the given width.
func (w Weights) Check(featureCount int) error {
	if featureCount == 0 {
		return fmt.Errorf("no features")
	}
	if len(w.Coefficients) != featureCount {
		return fmt.Errorf("expected %d coefficients, got %d", featureCount, len(w.Coefficients))
	}
	return nil
}

// Predict returns bias + weights·sample.
func Predict(weights Weights, sample []float64) float64 {
	return dot(weights.Coefficients, sample) + weights.Bias
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights) && i < len(sample); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}
