// Package drift composes source/target frame triples for temporal and
// domain distribution-shift experiments. It only assembles frames via
// the dataset loader; it applies no transformations.
package drift

import (
	"fmt"

	"github.com/hed1ad/waterbench/pkg/dataset"
)

// Task is a distribution-shift evaluation setup: a model is fit on
// Source (optionally adapted on TargetTrain) and evaluated on TargetTest.
// Source and target frames share the same sensor schema.
type Task struct {
	Name        string
	Source      *dataset.Frame
	TargetTrain *dataset.Frame
	TargetTest  *dataset.Frame
}

// Temporal assembles the 2017 -> 2018 temporal drift task. The source is
// the full 2017 year; the target is the 2018 train/test splits.
func Temporal(l *dataset.Loader) (*Task, error) {
	source, err := fullYear(l, dataset.YearGecco2017)
	if err != nil {
		return nil, err
	}
	target, err := l.LoadYear(dataset.YearGecco2018)
	if err != nil {
		return nil, err
	}
	return newTask("temporal", source, target.Train, target.Test)
}

// Domain assembles the 2017+2018 -> 2019 domain drift task. The source
// concatenates the two earlier years; the target is the 2019 train/test
// splits.
func Domain(l *dataset.Loader) (*Task, error) {
	y17, err := fullYear(l, dataset.YearGecco2017)
	if err != nil {
		return nil, err
	}
	y18, err := fullYear(l, dataset.YearGecco2018)
	if err != nil {
		return nil, err
	}
	source, err := dataset.Concat(y17, y18)
	if err != nil {
		return nil, err
	}
	target, err := l.LoadYear(dataset.YearGecco2019)
	if err != nil {
		return nil, err
	}
	return newTask("domain", source, target.Train, target.Test)
}

func newTask(name string, source, targetTrain, targetTest *dataset.Frame) (*Task, error) {
	for _, fr := range []*dataset.Frame{targetTrain, targetTest} {
		if !source.SameSchema(fr) {
			return nil, fmt.Errorf("%w: %s task source sensors %v vs target %v",
				dataset.ErrSchemaMismatch, name, source.Sensors, fr.Sensors)
		}
	}
	return &Task{Name: name, Source: source, TargetTrain: targetTrain, TargetTest: targetTest}, nil
}

func fullYear(l *dataset.Loader, year int) (*dataset.Frame, error) {
	y, err := l.LoadYear(year)
	if err != nil {
		return nil, err
	}
	return dataset.Concat(y.Train, y.Val, y.Test)
}
