// Package dataset loads the GECCO water-quality datasets (2017-2019)
// into timestamped observation frames, fetching split CSVs from remote
// storage on first use and caching them locally.
package dataset

import (
	"fmt"
	"time"
)

// StandardSensors is the fixed sensor schema of the GECCO water-quality
// datasets, in canonical column order.
var StandardSensors = []string{"Tp", "Cl", "pH", "Redox", "Leit", "Trueb", "Cl_2", "Fm", "Fm_2"}

// Frame is an ordered sequence of timestamped sensor observations with
// binary anomaly labels. Rows are chronological with strictly increasing
// timestamps. Frames are treated as immutable by downstream stages.
type Frame struct {
	Times   []time.Time
	Sensors []string
	Data    [][]float64
	Labels  []int
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Data)
}

// Matrix returns the sensor values as a row-major 2D slice.
// The returned slice aliases the frame's storage.
func (f *Frame) Matrix() [][]float64 {
	return f.Data
}

// LabelVector returns the anomaly labels (0 = normal, 1 = event).
func (f *Frame) LabelVector() []int {
	return f.Labels
}

// AnomalyRate returns the fraction of rows labeled as events.
func (f *Frame) AnomalyRate() float64 {
	if len(f.Labels) == 0 {
		return 0
	}
	n := 0
	for _, l := range f.Labels {
		if l != 0 {
			n++
		}
	}
	return float64(n) / float64(len(f.Labels))
}

// SameSchema reports whether two frames share the exact sensor schema,
// including column order.
func (f *Frame) SameSchema(other *Frame) bool {
	if len(f.Sensors) != len(other.Sensors) {
		return false
	}
	for i, s := range f.Sensors {
		if other.Sensors[i] != s {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		Times:   make([]time.Time, len(f.Times)),
		Sensors: make([]string, len(f.Sensors)),
		Data:    make([][]float64, len(f.Data)),
		Labels:  make([]int, len(f.Labels)),
	}
	copy(c.Times, f.Times)
	copy(c.Sensors, f.Sensors)
	copy(c.Labels, f.Labels)
	for i, row := range f.Data {
		c.Data[i] = make([]float64, len(row))
		copy(c.Data[i], row)
	}
	return c
}

// Concat appends frames in order into a new frame. All frames must share
// the sensor schema; row order follows the argument order, which for the
// drift tasks is already chronological across years.
func Concat(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: concat of zero frames", ErrInvalidConfiguration)
	}

	out := &Frame{Sensors: frames[0].Sensors}
	for _, fr := range frames {
		if !frames[0].SameSchema(fr) {
			return nil, fmt.Errorf("%w: concat with sensors %v vs %v",
				ErrSchemaMismatch, frames[0].Sensors, fr.Sensors)
		}
		out.Times = append(out.Times, fr.Times...)
		out.Data = append(out.Data, fr.Data...)
		out.Labels = append(out.Labels, fr.Labels...)
	}
	return out, nil
}
