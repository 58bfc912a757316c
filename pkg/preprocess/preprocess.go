// Package preprocess imputes and scales sensor frames. Normalization
// statistics are fit once on a reference split and passed explicitly to
// other splits, so test data never leaks into the scaler.
package preprocess

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/hed1ad/waterbench/pkg/dataset"
)

// Stats holds per-feature normalization statistics: the median used for
// imputation and the mean/std used for scaling.
type Stats struct {
	Sensors []string
	Median  []float64
	Mean    []float64
	Std     []float64
}

// Result is the output of a preprocessing run.
type Result struct {
	// Scaled is the imputed and standardized feature matrix.
	Scaled [][]float64
	// Raw is the imputed but unscaled feature matrix.
	Raw [][]float64
	// Labels are the anomaly labels, unchanged.
	Labels []int
	// Stats are the statistics that were applied.
	Stats *Stats
}

// Fit computes normalization statistics from a frame. NaN values are
// excluded from the median and imputed before mean/std are computed,
// matching how Apply will treat them.
func Fit(frame *dataset.Frame) (*Stats, error) {
	if frame.Len() == 0 {
		return nil, fmt.Errorf("%w: empty frame", dataset.ErrInvalidConfiguration)
	}

	nFeatures := len(frame.Sensors)
	s := &Stats{
		Sensors: append([]string(nil), frame.Sensors...),
		Median:  make([]float64, nFeatures),
		Mean:    make([]float64, nFeatures),
		Std:     make([]float64, nFeatures),
	}

	col := make([]float64, 0, frame.Len())
	for j := 0; j < nFeatures; j++ {
		col = col[:0]
		for _, row := range frame.Data {
			if !math.IsNaN(row[j]) {
				col = append(col, row[j])
			}
		}
		s.Median[j] = median(col)

		// Impute before fitting the scaler, as Apply does.
		imputed := make([]float64, frame.Len())
		for i, row := range frame.Data {
			imputed[i] = row[j]
			if math.IsNaN(imputed[i]) {
				imputed[i] = s.Median[j]
			}
		}
		s.Mean[j], s.Std[j] = stat.MeanStdDev(imputed, nil)
		if math.IsNaN(s.Std[j]) {
			s.Std[j] = 0
		}
	}
	return s, nil
}

// Run preprocesses a frame. When stats is nil, statistics are fit on the
// frame itself; when provided, they are applied without recomputation.
func Run(frame *dataset.Frame, stats *Stats) (*Result, error) {
	var err error
	if stats == nil {
		if stats, err = Fit(frame); err != nil {
			return nil, err
		}
	}
	return Apply(frame, stats)
}

// Apply imputes NaNs with the stats' medians and standardizes each
// feature with the stats' mean/std. Zero-variance features scale to 0.
func Apply(frame *dataset.Frame, stats *Stats) (*Result, error) {
	if err := checkSchema(frame, stats); err != nil {
		return nil, err
	}

	n := frame.Len()
	res := &Result{
		Scaled: make([][]float64, n),
		Raw:    make([][]float64, n),
		Labels: append([]int(nil), frame.Labels...),
		Stats:  stats,
	}

	for i, row := range frame.Data {
		raw := make([]float64, len(row))
		scaled := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				v = stats.Median[j]
			}
			raw[j] = v
			if stats.Std[j] == 0 {
				scaled[j] = 0
			} else {
				scaled[j] = (v - stats.Mean[j]) / stats.Std[j]
			}
		}
		res.Raw[i] = raw
		res.Scaled[i] = scaled
	}
	return res, nil
}

func checkSchema(frame *dataset.Frame, stats *Stats) error {
	if len(frame.Sensors) != len(stats.Sensors) {
		return fmt.Errorf("%w: frame has %d sensors, stats have %d",
			dataset.ErrSchemaMismatch, len(frame.Sensors), len(stats.Sensors))
	}
	for j, s := range stats.Sensors {
		if frame.Sensors[j] != s {
			return fmt.Errorf("%w: sensor %d is %q, stats expect %q",
				dataset.ErrSchemaMismatch, j, frame.Sensors[j], s)
		}
	}
	return nil
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
