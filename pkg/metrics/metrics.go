// Package metrics scores anomaly predictions against ground truth over
// chronological label sequences. It provides standard point-wise
// classification metrics and range-aware variants that credit partial
// overlap between predicted and true anomalous intervals.
//
// All functions are deterministic and stateless.
package metrics

import (
	"errors"
)

// Report holds point-wise classification metrics.
type Report struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	TrueNegatives  int

	Precision float64
	Recall    float64
	F1        float64
	Accuracy  float64
}

// Evaluate computes point-wise metrics over aligned label sequences.
// Labels are 0 (normal) or 1 (anomaly). Sequences where neither side
// contains an anomaly score as perfect.
func Evaluate(yTrue, yPred []int) (Report, error) {
	if len(yTrue) != len(yPred) {
		return Report{}, errors.New("label sequences have different lengths")
	}

	var r Report
	for i := range yTrue {
		switch {
		case yTrue[i] != 0 && yPred[i] != 0:
			r.TruePositives++
		case yTrue[i] == 0 && yPred[i] != 0:
			r.FalsePositives++
		case yTrue[i] != 0 && yPred[i] == 0:
			r.FalseNegatives++
		default:
			r.TrueNegatives++
		}
	}

	r.Precision = ratio(r.TruePositives, r.TruePositives+r.FalsePositives, r.TruePositives+r.FalseNegatives == 0)
	r.Recall = ratio(r.TruePositives, r.TruePositives+r.FalseNegatives, r.TruePositives+r.FalsePositives == 0)
	r.F1 = FBeta(r.Precision, r.Recall, 1)
	if len(yTrue) > 0 {
		r.Accuracy = float64(r.TruePositives+r.TrueNegatives) / float64(len(yTrue))
	}
	return r, nil
}

// ratio is num/den with the degenerate-denominator convention: when den
// is zero the metric is 1 if the other side is also empty, else 0.
func ratio(num, den int, otherEmpty bool) float64 {
	if den == 0 {
		if otherEmpty {
			return 1
		}
		return 0
	}
	return float64(num) / float64(den)
}

// FBeta combines precision and recall with recall weighted beta times as
// much as precision.
func FBeta(precision, recall, beta float64) float64 {
	if precision == 0 && recall == 0 {
		return 0
	}
	b2 := beta * beta
	return (1 + b2) * precision * recall / (b2*precision + recall)
}

// Range is a maximal run of consecutive anomalous points, inclusive on
// both ends.
type Range struct {
	Start int
	End   int
}

// Len returns the number of points in the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// overlap returns the number of points shared with other.
func (r Range) overlap(other Range) int {
	lo := max(r.Start, other.Start)
	hi := min(r.End, other.End)
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

// Ranges extracts the anomalous intervals from a label sequence.
func Ranges(labels []int) []Range {
	var out []Range
	start := -1
	for i, l := range labels {
		switch {
		case l != 0 && start < 0:
			start = i
		case l == 0 && start >= 0:
			out = append(out, Range{Start: start, End: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Range{Start: start, End: len(labels) - 1})
	}
	return out
}

// RangeReport holds range-aware metrics.
type RangeReport struct {
	Precision float64
	Recall    float64
	F1        float64
}

// EvaluateRanges computes range-aware precision and recall after Tatbul
// et al.: each true range earns alpha for being detected at all
// (existence reward) plus (1-alpha) times its overlapped fraction, with
// a flat positional bias. Predicted ranges are scored by overlapped
// fraction alone. alpha must be in [0, 1].
func EvaluateRanges(yTrue, yPred []int, alpha float64) (RangeReport, error) {
	if len(yTrue) != len(yPred) {
		return RangeReport{}, errors.New("label sequences have different lengths")
	}
	if alpha < 0 || alpha > 1 {
		return RangeReport{}, errors.New("alpha must be in [0, 1]")
	}

	trueRanges := Ranges(yTrue)
	predRanges := Ranges(yPred)

	var rep RangeReport
	rep.Recall = rangeRecall(trueRanges, predRanges, alpha)
	rep.Precision = rangePrecision(trueRanges, predRanges)
	rep.F1 = FBeta(rep.Precision, rep.Recall, 1)
	return rep, nil
}

func rangeRecall(trueRanges, predRanges []Range, alpha float64) float64 {
	if len(trueRanges) == 0 {
		if len(predRanges) == 0 {
			return 1
		}
		return 0
	}

	var total float64
	for _, tr := range trueRanges {
		covered := 0
		for _, pr := range predRanges {
			covered += tr.overlap(pr)
		}
		existence := 0.0
		if covered > 0 {
			existence = 1
		}
		total += alpha*existence + (1-alpha)*float64(covered)/float64(tr.Len())
	}
	return total / float64(len(trueRanges))
}

func rangePrecision(trueRanges, predRanges []Range) float64 {
	if len(predRanges) == 0 {
		if len(trueRanges) == 0 {
			return 1
		}
		return 0
	}

	var total float64
	for _, pr := range predRanges {
		covered := 0
		for _, tr := range trueRanges {
			covered += pr.overlap(tr)
		}
		total += float64(covered) / float64(pr.Len())
	}
	return total / float64(len(predRanges))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
