// Package visualize renders presentation plots for benchmark runs:
// anomaly-score timelines and sensor series with event markers.
package visualize

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/hed1ad/waterbench/pkg/dataset"
)

const timeFormat = "01-02 15:04"

// ScoreTimeline saves a PNG of anomaly scores over time with the
// decision threshold drawn as a horizontal line.
func ScoreTimeline(path string, times []time.Time, scores []float64, threshold float64) error {
	if len(times) != len(scores) {
		return fmt.Errorf("times and scores have different lengths: %d vs %d", len(times), len(scores))
	}

	p := plot.New()
	p.Title.Text = "Anomaly scores"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Score"
	p.Y.Min, p.Y.Max = 0, 1
	p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat}

	pts := make(plotter.XYs, len(scores))
	for i := range scores {
		pts[i].X = float64(times[i].Unix())
		pts[i].Y = scores[i]
	}

	thr := plotter.NewFunction(func(x float64) float64 { return threshold })
	p.Add(thr)

	if err := plotutil.AddLinePoints(p, "score", pts); err != nil {
		return err
	}
	return save(p, path)
}

// SensorSeries saves a PNG of one sensor over time, with true-event
// points overlaid as a scatter.
func SensorSeries(path string, frame *dataset.Frame, sensor string) error {
	col := -1
	for j, s := range frame.Sensors {
		if s == sensor {
			col = j
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("%w: sensor %q not in frame", dataset.ErrSchemaMismatch, sensor)
	}

	p := plot.New()
	p.Title.Text = sensor
	p.X.Label.Text = "Time"
	p.Y.Label.Text = sensor
	p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat}

	series := make(plotter.XYs, 0, frame.Len())
	events := make(plotter.XYs, 0)
	for i := range frame.Data {
		x := float64(frame.Times[i].Unix())
		y := frame.Data[i][col]
		series = append(series, plotter.XY{X: x, Y: y})
		if frame.Labels[i] != 0 {
			events = append(events, plotter.XY{X: x, Y: y})
		}
	}

	line, err := plotter.NewLine(series)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Legend.Add(sensor, line)

	if len(events) > 0 {
		scatter, err := plotter.NewScatter(events)
		if err != nil {
			return err
		}
		p.Add(scatter)
		p.Legend.Add("event", scatter)
	}
	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}
