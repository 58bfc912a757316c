// Package bench runs the benchmark pipeline end to end: preprocess a
// train/test frame pair, fit a detector on the train split, score the
// test split, and evaluate against the test labels.
package bench

import (
	"fmt"

	"github.com/hed1ad/waterbench/pkg/dataset"
	"github.com/hed1ad/waterbench/pkg/detectors"
	"github.com/hed1ad/waterbench/pkg/detectors/iforest"
	"github.com/hed1ad/waterbench/pkg/detectors/lof"
	"github.com/hed1ad/waterbench/pkg/metrics"
	"github.com/hed1ad/waterbench/pkg/preprocess"
)

// Model names accepted by BuildDetector.
const (
	ModelIsolationForest = "iforest"
	ModelLOF             = "lof"
)

// DefaultAlpha is the existence-reward weight for range recall.
const DefaultAlpha = 0.2

// Result is the outcome of one pipeline run.
type Result struct {
	Task  string
	Model string

	// Scores are the anomaly scores on the test split, aligned with
	// Predicted and the test frame's rows.
	Scores    []float64
	Predicted []int
	Threshold float64

	Point metrics.Report
	Range metrics.RangeReport
}

// BuildDetector constructs a detector by name.
func BuildDetector(name string, cfg detectors.Config) (detectors.Detector, error) {
	switch name {
	case ModelIsolationForest:
		return iforest.New(
			iforest.WithContamination(cfg.Contamination),
			iforest.WithSeed(cfg.RandomSeed),
		), nil
	case ModelLOF:
		return lof.New(
			lof.WithContamination(cfg.Contamination),
		), nil
	}
	return nil, fmt.Errorf("%w: unknown model %q", dataset.ErrInvalidConfiguration, name)
}

// Run executes the pipeline for one train/test pair. Normalization stats
// are fit on the train frame only and applied to the test frame.
func Run(task, model string, det detectors.Detector, train, test *dataset.Frame, alpha float64) (*Result, error) {
	trainPrep, err := preprocess.Run(train, nil)
	if err != nil {
		return nil, fmt.Errorf("preprocess train: %w", err)
	}
	testPrep, err := preprocess.Run(test, trainPrep.Stats)
	if err != nil {
		return nil, fmt.Errorf("preprocess test: %w", err)
	}

	if err := det.Fit(trainPrep.Scaled); err != nil {
		return nil, fmt.Errorf("fit %s: %w", model, err)
	}
	scores, err := det.Predict(testPrep.Scaled)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", model, err)
	}

	predicted := detectors.Labels(scores, det.Threshold())
	point, err := metrics.Evaluate(testPrep.Labels, predicted)
	if err != nil {
		return nil, err
	}
	ranges, err := metrics.EvaluateRanges(testPrep.Labels, predicted, alpha)
	if err != nil {
		return nil, err
	}

	return &Result{
		Task:      task,
		Model:     model,
		Scores:    scores,
		Predicted: predicted,
		Threshold: det.Threshold(),
		Point:     point,
		Range:     ranges,
	}, nil
}
