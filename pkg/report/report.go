// Package report exports evaluation summaries to CSV and XLSX files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/hed1ad/waterbench/pkg/metrics"
)

// Row is one evaluated model/task combination.
type Row struct {
	Task  string
	Model string
	Point metrics.Report
	Range metrics.RangeReport
}

var header = []string{
	"task", "model",
	"precision", "recall", "f1", "accuracy",
	"range_precision", "range_recall", "range_f1",
	"tp", "fp", "fn", "tn",
}

func (r Row) record() []string {
	return []string{
		r.Task,
		r.Model,
		formatFloat(r.Point.Precision),
		formatFloat(r.Point.Recall),
		formatFloat(r.Point.F1),
		formatFloat(r.Point.Accuracy),
		formatFloat(r.Range.Precision),
		formatFloat(r.Range.Recall),
		formatFloat(r.Range.F1),
		strconv.Itoa(r.Point.TruePositives),
		strconv.Itoa(r.Point.FalsePositives),
		strconv.Itoa(r.Point.FalseNegatives),
		strconv.Itoa(r.Point.TrueNegatives),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Writer writes evaluation summaries into a reports directory.
type Writer struct {
	dir string
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteCSV writes rows as a CSV file with a UTF-8 BOM so spreadsheet
// tools pick up the encoding. Returns the written path.
func (w *Writer) WriteCSV(name string, rows []Row) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return "", fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return path, cw.Error()
}

// WriteXLSX writes rows as a single-sheet workbook. Returns the written
// path.
func (w *Writer) WriteXLSX(name string, rows []Row) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", err
	}

	if err := setRow(f, sheet, 1, header); err != nil {
		return "", err
	}
	for i, row := range rows {
		cells := []interface{}{
			row.Task, row.Model,
			row.Point.Precision, row.Point.Recall, row.Point.F1, row.Point.Accuracy,
			row.Range.Precision, row.Range.Recall, row.Range.F1,
			row.Point.TruePositives, row.Point.FalsePositives,
			row.Point.FalseNegatives, row.Point.TrueNegatives,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
