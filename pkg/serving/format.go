package serving

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const estimateLabel = "Estimated Hospital Charges"

// Round2 rounds half to even at two decimals.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// FormatCurrency renders v as dollars with thousands separators, e.g. $12,345.68.
func FormatCurrency(v float64) string {
	p := message.NewPrinter(language.English)
	return "$" + p.Sprintf("%.2f", Round2(v))
}

// FormatEstimate renders the result line shown to the user.
func FormatEstimate(v float64) string {
	return fmt.Sprintf("%s: **%s**", estimateLabel, FormatCurrency(v))
}
