package lof

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l := New()
	assert.Equal(t, 20, l.k)

	l = New(WithNeighbors(5), WithContamination(0.05))
	assert.Equal(t, 5, l.k)
	assert.Equal(t, 0.05, l.contamination)
}

func TestFitValidation(t *testing.T) {
	l := New(WithNeighbors(5))

	assert.Error(t, l.Fit(nil), "empty data")
	assert.Error(t, l.Fit(clusterData(4, 2, 0, 1)), "fewer samples than k")
	assert.NoError(t, l.Fit(clusterData(50, 2, 0, 1)))
}

func TestPredictSeparatesOutliers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	train := make([][]float64, 0, 200)
	for i := 0; i < 200; i++ {
		train = append(train, []float64{rng.NormFloat64(), rng.NormFloat64()})
	}

	l := New(WithNeighbors(10), WithContamination(0))
	require.NoError(t, l.Fit(train))

	inlier, err := l.PredictOne([]float64{0.1, -0.2})
	require.NoError(t, err)
	outlier, err := l.PredictOne([]float64{25, 25})
	require.NoError(t, err)

	assert.Greater(t, outlier, inlier, "distant point must score higher")
	assert.Greater(t, outlier, 0.5)
	assert.GreaterOrEqual(t, inlier, 0.0)
	assert.Less(t, inlier, 1.0)
}

func TestPredictRange(t *testing.T) {
	l := New(WithNeighbors(5), WithContamination(0.1))
	require.NoError(t, l.Fit(clusterData(100, 3, 0, 1)))

	scores, err := l.Predict(clusterData(30, 3, 0, 1))
	require.NoError(t, err)
	assert.Len(t, scores, 30)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.Less(t, s, 1.0)
	}
}

func TestPredictBeforeFit(t *testing.T) {
	l := New()
	_, err := l.Predict([][]float64{{1, 2}})
	assert.Error(t, err)
	_, err = l.PredictOne([]float64{1, 2})
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	train := clusterData(120, 2, 0, 1)
	original := New(WithNeighbors(8), WithContamination(0.1))
	require.NoError(t, original.Fit(train))

	test := clusterData(40, 2, 0.5, 1.5)
	originalScores, err := original.Predict(test)
	require.NoError(t, err)

	data, err := original.Save()
	require.NoError(t, err)

	loaded := New()
	require.NoError(t, loaded.Load(data))

	loadedScores, err := loaded.Predict(test)
	require.NoError(t, err)
	assert.Equal(t, originalScores, loadedScores)
	assert.Equal(t, original.Threshold(), loaded.Threshold())
}

func TestThreshold(t *testing.T) {
	l := New()
	assert.Equal(t, 0.5, l.Threshold())
	l.SetThreshold(0.8)
	assert.Equal(t, 0.8, l.Threshold())
}

func BenchmarkPredict(b *testing.B) {
	train := clusterData(1000, 5, 0, 1)
	test := clusterData(100, 5, 0, 1)

	l := New(WithNeighbors(20))
	if err := l.Fit(train); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Predict(test)
	}
}

// clusterData samples n points of the given dimension around center with
// the given spread, deterministically.
func clusterData(n, dim int, center, spread float64) [][]float64 {
	rng := rand.New(rand.NewSource(1))
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, dim)
		for j := range data[i] {
			data[i][j] = center + spread*rng.NormFloat64()
		}
	}
	return data
}
