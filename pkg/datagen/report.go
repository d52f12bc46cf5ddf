package datagen

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const rule = "=================================================="

// WriteSummary prints a console report for one dataset.
func WriteSummary(w io.Writer, title string, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\n%s\n%s SUMMARY\n%s\n", rule, strings.ToUpper(title), rule)
	fmt.Fprintf(tw, "Total records: %d\nTotal columns: %d\n", s.Records, s.Columns)

	fmt.Fprintf(tw, "\nNUMERICAL FEATURES\n")
	fmt.Fprintf(tw, "\tcount\tmean\tstd\tmin\t25%%\t50%%\t75%%\tmax\t\n")
	for _, n := range s.Numeric {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			n.Column, n.Count, n.Mean, n.Std, n.Min, n.P25, n.P50, n.P75, n.Max)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nCATEGORICAL FEATURES\n")
	for _, c := range s.Categorical {
		fmt.Fprintf(w, "\n%s:\n", strings.ToUpper(c.Column))
		for _, count := range c.Counts {
			fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", count.Value, count.Count, count.Percent)
		}
	}
	return nil
}

// WriteComparison prints the original-vs-synthetic means and spreads.
func WriteComparison(w io.Writer, c Comparison, synthetic Summary) error {
	fmt.Fprintf(w, "\n%s\nCOMPARISON: ORIGINAL vs SYNTHETIC\n%s\n", rule, rule)
	fmt.Fprintf(w, "Original data records: %d\n", c.OriginalRecords)
	fmt.Fprintf(w, "Synthetic data records: %d\n", c.SyntheticRecords)
	fmt.Fprintf(w, "Scale factor: %.1fx\n", c.ScaleFactor)
	for _, col := range c.Columns {
		fmt.Fprintf(w, "\n%s:\n", strings.ToUpper(col.Column))
		fmt.Fprintf(w, "  Original  - Mean: %.2f, Std: %.2f\n", col.OriginalMean, col.OriginalStd)
		fmt.Fprintf(w, "  Synthetic - Mean: %.2f, Std: %.2f\n", col.SyntheticMean, col.SyntheticStd)
	}

	fmt.Fprintf(w, "\n%s\nDATA QUALITY CHECK\n%s\n", rule, rule)
	if c.DroppedRows == 0 {
		fmt.Fprintf(w, "Rows dropped by schema check: 0 (all synthetic rows valid)\n")
	} else {
		fmt.Fprintf(w, "Rows dropped by schema check: %d\n", c.DroppedRows)
	}

	fmt.Fprintf(w, "\nValue ranges in synthetic data:\n")
	for _, n := range synthetic.Numeric {
		_, err := fmt.Fprintf(w, "  %s: %.2f - %.2f\n", n.Column, n.Min, n.Max)
		if err != nil {
			return err
		}
	}
	return nil
}
