package dataset

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

// Split names one partition of a yearly dataset.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// Years covered by the benchmark.
const (
	YearGecco2017 = 2017
	YearGecco2018 = 2018
	YearGecco2019 = 2019
)

// DefaultBaseURL is the public bucket holding the yearly split CSVs.
const DefaultBaseURL = "https://waterbench-data.s3.eu-central-1.amazonaws.com/gecco"

// TimeColumn and EventColumn are the non-sensor columns of the raw CSVs.
const (
	TimeColumn  = "Time"
	EventColumn = "EVENT"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// YearData holds the three splits of one year.
type YearData struct {
	Train *Frame
	Val   *Frame
	Test  *Frame
}

// Loader fetches split CSVs from remote storage, caches them in a local
// directory keyed by year and split, and parses them into Frames.
type Loader struct {
	baseURL  string
	cacheDir string
	client   *http.Client
	log      *zap.SugaredLogger
}

// Option configures a Loader.
type Option func(*Loader)

// WithBaseURL overrides the remote storage base URL.
func WithBaseURL(url string) Option {
	return func(l *Loader) {
		l.baseURL = strings.TrimRight(url, "/")
	}
}

// WithCacheDir sets the local cache directory.
func WithCacheDir(dir string) Option {
	return func(l *Loader) {
		l.cacheDir = dir
	}
}

// WithHTTPClient overrides the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// NewLoader creates a Loader with the given options. The default cache
// directory is data/cache under the working directory.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		baseURL:  DefaultBaseURL,
		cacheDir: filepath.Join("data", "cache"),
		client:   &http.Client{Timeout: 60 * time.Second},
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadSplit returns one split of one year as a Frame, downloading the
// CSV on first use and reading the cached copy thereafter.
func (l *Loader) LoadSplit(year int, split Split) (*Frame, error) {
	if err := validate(year, split); err != nil {
		return nil, err
	}

	path, err := l.ensureCached(year, split)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open cached %d/%s: %v", ErrDataUnavailable, year, split, err)
	}
	defer f.Close()

	frame, err := ParseFrame(f)
	if err != nil {
		return nil, fmt.Errorf("parse %d/%s: %w", year, split, err)
	}

	l.log.Infow("loaded split", "year", year, "split", split, "rows", frame.Len())
	return frame, nil
}

// LoadYear returns all three splits of one year.
func (l *Loader) LoadYear(year int) (*YearData, error) {
	train, err := l.LoadSplit(year, SplitTrain)
	if err != nil {
		return nil, err
	}
	val, err := l.LoadSplit(year, SplitVal)
	if err != nil {
		return nil, err
	}
	test, err := l.LoadSplit(year, SplitTest)
	if err != nil {
		return nil, err
	}
	return &YearData{Train: train, Val: val, Test: test}, nil
}

// CachePath returns the local cache file for a year/split.
func (l *Loader) CachePath(year int, split Split) string {
	return filepath.Join(l.cacheDir, fmt.Sprintf("%d_%s.csv", year, split))
}

func validate(year int, split Split) error {
	switch year {
	case YearGecco2017, YearGecco2018, YearGecco2019:
	default:
		return fmt.Errorf("%w: unknown year %d", ErrInvalidConfiguration, year)
	}
	switch split {
	case SplitTrain, SplitVal, SplitTest:
	default:
		return fmt.Errorf("%w: unknown split %q", ErrInvalidConfiguration, split)
	}
	return nil
}

// ensureCached downloads the split CSV unless a cached copy exists.
// A failed download falls back to the cache; with neither, the split is
// unavailable.
func (l *Loader) ensureCached(year int, split Split) (string, error) {
	path := l.CachePath(year, split)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	url := fmt.Sprintf("%s/%d/%s.csv", l.baseURL, year, split)
	if err := l.download(url, path); err != nil {
		return "", fmt.Errorf("%w: %d/%s from %s: %v", ErrDataUnavailable, year, split, url, err)
	}
	return path, nil
}

func (l *Loader) download(url, path string) error {
	l.log.Infow("downloading split", "url", url, "dest", path)

	resp, err := l.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// Write to a temp file first so a partial download never poisons
	// the cache.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ParseFrame reads a raw split CSV into a Frame. Sensor values that fail
// to parse become NaN (imputed later by preprocessing); rows without a
// parseable timestamp are dropped; rows are sorted chronologically and
// duplicate timestamps collapse to the first occurrence.
func ParseFrame(r io.Reader) (*Frame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", ErrDataUnavailable, df.Err)
	}

	have := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		have[name] = true
	}

	var missing []string
	for _, col := range append([]string{TimeColumn, EventColumn}, StandardSensors...) {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %v", ErrSchemaMismatch, missing)
	}

	times := df.Col(TimeColumn).Records()
	events := df.Col(EventColumn).Records()
	sensorCols := make([][]float64, len(StandardSensors))
	for j, s := range StandardSensors {
		sensorCols[j] = df.Col(s).Float()
	}

	frame := &Frame{Sensors: append([]string(nil), StandardSensors...)}
	for i := range times {
		ts, ok := parseTime(times[i])
		if !ok {
			continue
		}
		row := make([]float64, len(StandardSensors))
		for j := range sensorCols {
			row[j] = sensorCols[j][i]
		}
		frame.Times = append(frame.Times, ts)
		frame.Data = append(frame.Data, row)
		frame.Labels = append(frame.Labels, parseEvent(events[i]))
	}

	sortFrame(frame)
	return frame, nil
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseEvent(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "t", "yes":
		return 1
	}
	return 0
}

// sortFrame orders rows chronologically and drops rows that repeat the
// previous timestamp, keeping timestamps strictly increasing.
func sortFrame(f *Frame) {
	idx := make([]int, len(f.Times))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return f.Times[idx[a]].Before(f.Times[idx[b]])
	})

	times := make([]time.Time, 0, len(idx))
	data := make([][]float64, 0, len(idx))
	labels := make([]int, 0, len(idx))
	for _, i := range idx {
		if len(times) > 0 && !f.Times[i].After(times[len(times)-1]) {
			continue
		}
		times = append(times, f.Times[i])
		data = append(data, f.Data[i])
		labels = append(labels, f.Labels[i])
	}
	f.Times, f.Data, f.Labels = times, data, labels
}
