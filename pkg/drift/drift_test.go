package drift

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/waterbench/pkg/dataset"
)

// seedCache writes n-row split CSVs for the given years into dir so the
// loader never touches the network.
func seedCache(t *testing.T, dir string, years map[int]int) {
	t.Helper()
	header := "Time,Tp,Cl,pH,Redox,Leit,Trueb,Cl_2,Fm,Fm_2,EVENT\n"
	for year, rows := range years {
		for i, split := range []dataset.Split{dataset.SplitTrain, dataset.SplitVal, dataset.SplitTest} {
			body := header
			for r := 0; r < rows; r++ {
				event := "False"
				if r == rows-1 {
					event = "True"
				}
				body += fmt.Sprintf("%d-0%d-01 00:%02d:00,8.3,0.17,8.4,755,505,0.025,0.11,1550,1420,%s\n",
					year, i+1, r, event)
			}
			path := filepath.Join(dir, fmt.Sprintf("%d_%s.csv", year, split))
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		}
	}
}

func cachedLoader(t *testing.T, years map[int]int) *dataset.Loader {
	t.Helper()
	dir := t.TempDir()
	seedCache(t, dir, years)
	return dataset.NewLoader(
		dataset.WithBaseURL("http://127.0.0.1:0"),
		dataset.WithCacheDir(dir),
	)
}

func TestTemporal(t *testing.T) {
	l := cachedLoader(t, map[int]int{2017: 4, 2018: 3})

	task, err := Temporal(l)
	require.NoError(t, err)

	assert.Equal(t, "temporal", task.Name)
	assert.Equal(t, 12, task.Source.Len(), "source is the full 2017 year")
	assert.Equal(t, 3, task.TargetTrain.Len())
	assert.Equal(t, 3, task.TargetTest.Len())

	// Feature columns must match exactly across source and target.
	assert.Equal(t, task.Source.Sensors, task.TargetTrain.Sensors)
	assert.Equal(t, task.Source.Sensors, task.TargetTest.Sensors)
}

func TestDomain(t *testing.T) {
	l := cachedLoader(t, map[int]int{2017: 2, 2018: 3, 2019: 4})

	task, err := Domain(l)
	require.NoError(t, err)

	assert.Equal(t, "domain", task.Name)
	assert.Equal(t, 6+9, task.Source.Len(), "source concatenates 2017 and 2018")
	assert.Equal(t, 4, task.TargetTrain.Len())
	assert.Equal(t, 4, task.TargetTest.Len())
	assert.Equal(t, task.Source.Sensors, task.TargetTest.Sensors)
}

func TestTemporalMissingYear(t *testing.T) {
	l := cachedLoader(t, map[int]int{2017: 2})

	_, err := Temporal(l)
	assert.ErrorIs(t, err, dataset.ErrDataUnavailable)
}
