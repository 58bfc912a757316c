// Package lof implements the Local Outlier Factor algorithm. A sample is
// anomalous when its local density is low relative to the densities of
// its nearest neighbors.
package lof

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"sort"
)

// LOF is a k-nearest-neighbor density based detector. Neighbor search is
// brute force, which is adequate at benchmark scale.
type LOF struct {
	k             int
	contamination float64
	threshold     float64

	train   [][]float64
	kDist   []float64 // k-distance of each training point
	lrd     []float64 // local reachability density of each training point
	trained bool
}

// Option configures a LOF detector.
type Option func(*LOF)

// WithNeighbors sets the neighborhood size k.
func WithNeighbors(k int) Option {
	return func(l *LOF) {
		l.k = k
	}
}

// WithContamination sets the expected proportion of anomalies; after
// training, the threshold is set at the matching score percentile.
func WithContamination(c float64) Option {
	return func(l *LOF) {
		l.contamination = c
	}
}

// New creates a LOF detector with the given options.
func New(opts ...Option) *LOF {
	l := &LOF{
		k:             20,
		contamination: 0.1,
		threshold:     0.5,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type neighbor struct {
	idx  int
	dist float64
}

// Fit stores the training data and precomputes each training point's
// k-distance and local reachability density.
func (l *LOF) Fit(data [][]float64) error {
	if len(data) == 0 {
		return errors.New("empty training data")
	}
	if len(data) <= l.k {
		return errors.New("training data smaller than neighborhood size")
	}

	l.train = make([][]float64, len(data))
	for i, row := range data {
		l.train[i] = append([]float64(nil), row...)
	}

	// Pass 1: k-distances.
	nbrs := make([][]neighbor, len(l.train))
	l.kDist = make([]float64, len(l.train))
	for i := range l.train {
		nbrs[i] = l.nearest(l.train[i], i)
		l.kDist[i] = nbrs[i][len(nbrs[i])-1].dist
	}

	// Pass 2: local reachability densities.
	l.lrd = make([]float64, len(l.train))
	for i := range l.train {
		l.lrd[i] = l.density(nbrs[i])
	}

	l.trained = true

	if l.contamination > 0 {
		scores, _ := l.Predict(data)
		l.threshold = percentile(scores, 100*(1-l.contamination))
	}
	return nil
}

// nearest returns the k nearest training points to sample, excluding
// index skip (use -1 to keep all).
func (l *LOF) nearest(sample []float64, skip int) []neighbor {
	all := make([]neighbor, 0, len(l.train))
	for i, row := range l.train {
		if i == skip {
			continue
		}
		all = append(all, neighbor{idx: i, dist: euclidean(sample, row)})
	}
	sort.Slice(all, func(a, b int) bool { return all[a].dist < all[b].dist })
	if len(all) > l.k {
		all = all[:l.k]
	}
	return all
}

// density is the local reachability density over a neighbor set:
// the inverse mean reachability distance.
func (l *LOF) density(nbrs []neighbor) float64 {
	var sum float64
	for _, nb := range nbrs {
		sum += math.Max(l.kDist[nb.idx], nb.dist)
	}
	if sum == 0 {
		// Duplicated points; treat the density as effectively infinite.
		return math.Inf(1)
	}
	return float64(len(nbrs)) / sum
}

// factor is the raw LOF value of a sample relative to the training set.
// Values near 1 are inliers; larger values are outliers.
func (l *LOF) factor(sample []float64) float64 {
	nbrs := l.nearest(sample, -1)
	own := l.density(nbrs)
	if math.IsInf(own, 1) {
		return 1
	}

	var sum float64
	for _, nb := range nbrs {
		if math.IsInf(l.lrd[nb.idx], 1) {
			continue
		}
		sum += l.lrd[nb.idx]
	}
	return sum / float64(len(nbrs)) / own
}

// Predict returns anomaly scores in [0, 1) for the given samples.
func (l *LOF) Predict(data [][]float64) ([]float64, error) {
	if !l.trained {
		return nil, errors.New("model not trained")
	}
	scores := make([]float64, len(data))
	for i, sample := range data {
		scores[i] = squash(l.factor(sample))
	}
	return scores, nil
}

// PredictOne returns the anomaly score for a single sample.
func (l *LOF) PredictOne(sample []float64) (float64, error) {
	if !l.trained {
		return 0, errors.New("model not trained")
	}
	return squash(l.factor(sample)), nil
}

// squash maps a raw LOF value to [0, 1): 1.0 (perfect inlier) maps to 0
// and the score grows toward 1 as the factor grows.
func squash(lof float64) float64 {
	if lof <= 1 {
		return 0
	}
	return 1 - 1/lof
}

// Threshold returns the current anomaly threshold.
func (l *LOF) Threshold() float64 {
	return l.threshold
}

// SetThreshold updates the anomaly threshold.
func (l *LOF) SetThreshold(t float64) {
	l.threshold = t
}

// model is the gob persistence form of a trained detector.
type model struct {
	K             int
	Contamination float64
	Threshold     float64
	Train         [][]float64
	KDist         []float64
	LRD           []float64
}

// Save serializes the trained model.
func (l *LOF) Save() ([]byte, error) {
	if !l.trained {
		return nil, errors.New("model not trained")
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(model{
		K:             l.k,
		Contamination: l.contamination,
		Threshold:     l.threshold,
		Train:         l.train,
		KDist:         l.kDist,
		LRD:           l.lrd,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load deserializes a trained model.
func (l *LOF) Load(data []byte) error {
	var m model
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return err
	}
	l.k = m.K
	l.contamination = m.Contamination
	l.threshold = m.Threshold
	l.train = m.Train
	l.kDist = m.KDist
	l.lrd = m.LRD
	l.trained = true
	return nil
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// percentile returns the p-th percentile of the data.
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}
