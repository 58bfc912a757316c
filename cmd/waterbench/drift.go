package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hed1ad/waterbench/pkg/bench"
	"github.com/hed1ad/waterbench/pkg/dataset"
	"github.com/hed1ad/waterbench/pkg/detectors"
	"github.com/hed1ad/waterbench/pkg/drift"
	"github.com/hed1ad/waterbench/pkg/report"
)

func newDriftCmd(a *app) *cobra.Command {
	var (
		taskName      string
		model         string
		alpha         float64
		contamination float64
		export        bool
	)

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Run a temporal (2017->2018) or domain (2017+2018->2019) drift scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := a.loader()

			var (
				task *drift.Task
				err  error
			)
			switch taskName {
			case "temporal":
				task, err = drift.Temporal(loader)
			case "domain":
				task, err = drift.Domain(loader)
			default:
				return fmt.Errorf("%w: unknown drift task %q", dataset.ErrInvalidConfiguration, taskName)
			}
			if err != nil {
				return err
			}

			cfg := detectors.DefaultConfig()
			cfg.Contamination = contamination
			det, err := bench.BuildDetector(model, cfg)
			if err != nil {
				return err
			}

			// The model never sees the target's training split: drift is
			// measured as source-fit performance on the target test split.
			res, err := bench.Run("drift-"+task.Name, model, det, task.Source, task.TargetTest, alpha)
			if err != nil {
				return err
			}
			printResult(cmd, res)

			if export {
				w := report.NewWriter(a.cfg.Data.ReportsDir)
				row := report.Row{Task: res.Task, Model: res.Model, Point: res.Point, Range: res.Range}
				base := fmt.Sprintf("%s_%s", res.Task, res.Model)
				if _, err := w.WriteCSV(base+".csv", []report.Row{row}); err != nil {
					return err
				}
				if _, err := w.WriteXLSX(base+".xlsx", []report.Row{row}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&taskName, "task", "temporal", "drift task: temporal or domain")
	cmd.Flags().StringVar(&model, "model", bench.ModelIsolationForest, "model: iforest or lof")
	cmd.Flags().Float64Var(&alpha, "alpha", bench.DefaultAlpha, "existence-reward weight for range recall")
	cmd.Flags().Float64Var(&contamination, "contamination", 0.1, "expected anomaly proportion in training data")
	cmd.Flags().BoolVar(&export, "export", false, "write CSV and XLSX reports")
	return cmd
}
